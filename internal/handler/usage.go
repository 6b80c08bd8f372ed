package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/yuqie6/WellMirror/internal/dto"
	"github.com/yuqie6/WellMirror/internal/model"
	"github.com/yuqie6/WellMirror/internal/schema"
)

// HandleUsage 写入当日使用数据：usage 为手动指标，rows 为原生桥导出的行
func (a *API) HandleUsage(w http.ResponseWriter, r *http.Request) {
	if !a.requireWritableDB(w) {
		return
	}
	var req dto.UsageRequestDTO
	if err := readJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "请求体无效: "+err.Error())
		return
	}
	if (req.Usage == nil) == (req.Rows == nil) {
		WriteError(w, http.StatusBadRequest, "usage 与 rows 必须且只能提供一个")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var (
		snap *schema.UsageSnapshot
		err  error
	)
	if req.Usage != nil {
		snap, err = a.core.Services.Usage.SetUsage(ctx, req.Date, *req.Usage)
	} else {
		snap, err = a.core.Services.Usage.Import(ctx, &model.UsageExport{Date: req.Date, Rows: req.Rows, UnlockCount: req.UnlockCount})
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, dto.UsageSnapshotDTO{
		Date:        snap.Date,
		Usage:       snap.Usage,
		UnlockCount: snap.UnlockCount,
		Source:      snap.Source,
	})
}

// HandleAppStats 当日应用使用排行
func (a *API) HandleAppStats(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if s := strings.TrimSpace(r.URL.Query().Get("limit")); s != "" {
		if n, err := strconvAtoiSafe(s); err == nil && n > 0 {
			limit = n
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	stats, err := a.core.Services.Usage.TopApps(ctx, a.queryDate(r), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	result := make([]dto.AppStatsDTO, 0, len(stats))
	for _, s := range stats {
		result = append(result, dto.AppStatsDTO{
			PackageName:  s.PackageName,
			AppName:      s.AppName,
			Category:     s.Category,
			UsageSeconds: s.UsageSeconds,
		})
	}
	WriteJSON(w, http.StatusOK, result)
}
