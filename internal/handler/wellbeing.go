package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/yuqie6/WellMirror/internal/dto"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/repository"
	"github.com/yuqie6/WellMirror/internal/schema"
	"github.com/yuqie6/WellMirror/internal/service"
)

// writeServiceError 将服务层哨兵错误映射为 HTTP 状态
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotOnboarded):
		WriteAPIError(w, http.StatusConflict, APIError{Error: err.Error(), Code: "not_onboarded", Hint: "请先完成引导设置"})
	case errors.Is(err, service.ErrProfileExists):
		WriteAPIError(w, http.StatusConflict, APIError{Error: err.Error(), Code: "profile_exists"})
	case errors.Is(err, service.ErrReportExists):
		WriteAPIError(w, http.StatusConflict, APIError{Error: err.Error(), Code: "report_exists", Hint: "每天只能打卡一次"})
	case errors.Is(err, service.ErrBackfill):
		WriteAPIError(w, http.StatusConflict, APIError{Error: err.Error(), Code: "backfill_rejected", Hint: "只能为最新报告之后的日期打卡"})
	case errors.Is(err, service.ErrInvalidUsage), errors.Is(err, service.ErrInvalidPeriod):
		WriteError(w, http.StatusBadRequest, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (a *API) queryDate(r *http.Request) string {
	if d := strings.TrimSpace(r.URL.Query().Get("date")); d != "" {
		return d
	}
	return a.core.Services.CheckIns.Today()
}

func (a *API) HandleCurrentScore(w http.ResponseWriter, r *http.Request) {
	date := a.queryDate(r)
	if !repository.ValidDate(date) {
		WriteError(w, http.StatusBadRequest, "date 格式应为 YYYY-MM-DD")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	res, err := a.core.Services.Profiles.CurrentScore(ctx, date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.CurrentScoreDTO{
		Date:    res.Date,
		Score:   res.Score,
		Message: res.Message,
		Usage:   res.Usage,
		HasData: res.HasData,
	})
}

func (a *API) HandleOnboarding(w http.ResponseWriter, r *http.Request) {
	if !a.requireWritableDB(w) {
		return
	}
	var req model.OnboardingData
	if err := readJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "请求体无效: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := a.core.Services.Profiles.CompleteOnboarding(ctx, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if err := a.core.Services.State.SetOnboardingDone(ctx, true); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, toProfileDTO(profile))
}

func (a *API) HandleProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := a.core.Services.Profiles.Get(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, toProfileDTO(profile))
}

func (a *API) HandleCheckIn(w http.ResponseWriter, r *http.Request) {
	if !a.requireWritableDB(w) {
		return
	}
	var req dto.CheckInRequestDTO
	if err := readJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "请求体无效: "+err.Error())
		return
	}
	if len(req.CheckIn) == 0 {
		WriteError(w, http.StatusBadRequest, "checkIn 不能为空")
		return
	}
	checkIn, err := model.DecodeCheckIn(req.CheckIn)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := checkIn.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Date != "" && !repository.ValidDate(req.Date) {
		WriteError(w, http.StatusBadRequest, "date 格式应为 YYYY-MM-DD")
		return
	}

	// AI 评语可能较慢，超时后由服务层回退本地评语
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	report, err := a.core.Services.CheckIns.Complete(ctx, service.CompleteCheckInRequest{
		Date:          req.Date,
		CheckIn:       checkIn,
		Notifications: req.Notifications,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	profile, err := a.core.Services.Profiles.Get(ctx)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, dto.CheckInResponseDTO{
		Report:  toReportDTO(report),
		Profile: toProfileDTO(profile),
	})
}

func (a *API) HandleReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if s := strings.TrimSpace(r.URL.Query().Get("limit")); s != "" {
		if n, err := strconvAtoiSafe(s); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	reports, err := a.core.Services.CheckIns.ListReports(ctx, limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	result := make([]dto.ReportDTO, 0, len(reports))
	for i := range reports {
		result = append(result, toReportDTO(&reports[i]))
	}
	WriteJSON(w, http.StatusOK, result)
}

func (a *API) HandleReport(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if !repository.ValidDate(date) {
		WriteError(w, http.StatusBadRequest, "date 格式应为 YYYY-MM-DD")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report, err := a.core.Services.CheckIns.GetReport(ctx, date)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if report == nil {
		WriteError(w, http.StatusNotFound, "该日期没有报告")
		return
	}
	WriteJSON(w, http.StatusOK, toReportDTO(report))
}

func (a *API) HandleReset(w http.ResponseWriter, r *http.Request) {
	if !a.requireWritableDB(w) {
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	if err := a.core.Services.Profiles.Reset(ctx); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := a.core.Services.State.SetOnboardingDone(ctx, false); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func toProfileDTO(p *model.UserProfile) dto.ProfileDTO {
	return dto.ProfileDTO{
		Level:                 p.Level,
		Experience:            p.Experience,
		ExperienceToNextLevel: p.ExperienceToNextLevel,
		TotalDays:             p.TotalDays,
		CurrentStreak:         p.CurrentStreak,
		Onboarding:            p.Onboarding,
	}
}

func toReportDTO(r *schema.DailyReport) dto.ReportDTO {
	return dto.ReportDTO{
		UID:              r.UID,
		Date:             r.Date,
		Score:            r.Score,
		BaseScore:        r.BaseScore,
		BonusScore:       r.BonusScore,
		Breakdown:        r.Breakdown,
		Usage:            r.Usage,
		Notifications:    r.Notifications,
		CheckIn:          r.CheckIn,
		AIComment:        r.AIComment,
		Suggestion:       r.Suggestion,
		ExperienceGained: r.ExperienceGained,
		FeedbackSource:   r.FeedbackSource,
		Emoji:            service.MoodEmoji(r.CheckIn.Mood),
		CreatedAt:        r.CreatedAt.UnixMilli(),
	}
}

// HandleTrends 近 7/30 天得分趋势（?period=7d|30d）
func (a *API) HandleTrends(w http.ResponseWriter, r *http.Request) {
	period, err := service.ParseTrendPeriod(strings.TrimSpace(r.URL.Query().Get("period")))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	report, err := a.core.Services.Trends.GetTrendReport(ctx, period)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
