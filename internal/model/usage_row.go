package model

// UsageRow 原生桥导出的单个应用使用记录
type UsageRow struct {
	PackageName    string  `json:"packageName"`
	AppName        string  `json:"appName,omitempty"`
	UsageTime      float64 `json:"usageTime"`      // 秒
	FirstTimeStamp float64 `json:"firstTimeStamp"` // Unix 毫秒
	LastTimeStamp  float64 `json:"lastTimeStamp"`  // Unix 毫秒
}

// UsageExport 原生桥导出文件（也接受裸数组，见 collector）
type UsageExport struct {
	Date        string     `json:"date,omitempty"` // YYYY-MM-DD，为空取导入当天
	Rows        []UsageRow `json:"rows"`
	UnlockCount int        `json:"unlockCount"`
	Error       string     `json:"error,omitempty"` // 例如 NO_PERMISSION
}
