package service

import "errors"

var (
	// ErrNotOnboarded 尚未完成引导，没有成长档案
	ErrNotOnboarded = errors.New("尚未完成引导设置")
	// ErrProfileExists 档案已存在，引导数据不可修改
	ErrProfileExists = errors.New("成长档案已存在")
	// ErrReportExists 当日已完成打卡
	ErrReportExists = errors.New("当日报告已存在")
	// ErrBackfill 打卡日期早于最新报告，连续天数只能向后累计
	ErrBackfill = errors.New("打卡日期早于最新报告")
	// ErrInvalidUsage 使用数据不合法
	ErrInvalidUsage = errors.New("使用数据无效")
	// ErrInvalidPeriod 趋势周期不合法
	ErrInvalidPeriod = errors.New("趋势周期无效")
)
