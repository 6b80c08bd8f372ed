package service

import "strings"

// 应用类别
const (
	AppCategoryShortForm = "short_form"
	AppCategorySNS       = "sns"
	AppCategoryGame      = "game"
	AppCategoryOther     = "other"
)

// 包名前缀表（单一来源）
// 注意：全部使用小写，匹配时进行大小写不敏感比较
var (
	DefaultShortFormApps = []string{
		"com.zhiliaoapp.musically", "com.ss.android.ugc.trill", "com.ss.android.ugc.aweme",
		"com.google.android.youtube", "com.smile.gifmaker", "com.kuaishou.nebula",
		"com.instagram.barcelona",
	}
	DefaultSNSApps = []string{
		"com.instagram.android", "com.facebook.katana", "com.facebook.orca",
		"com.twitter.android", "com.kakao.talk", "jp.naver.line.android",
		"com.whatsapp", "org.telegram.messenger", "com.tencent.mm", "com.sina.weibo",
		"com.xingin.xhs", "com.discord", "com.snapchat.android", "com.reddit.frontpage",
	}
	DefaultGameApps = []string{
		"com.supercell.", "com.nexon.", "com.netmarble.", "com.ncsoft.", "com.krafton.",
		"com.tencent.ig", "com.tencent.tmgp.", "com.miHoYo.", "com.hoyoverse.",
		"com.riotgames.", "com.roblox.client", "com.king.", "com.mojang.",
	}
)

// 系统包过滤：包含这些片段的包名不计入使用统计
var systemPackageFragments = []string{"systemui", "launcher", "keyboard", "bluetooth", "provider"}

// 即使看起来像系统包也保留
var alwaysIncludedPackages = []string{"com.android.settings", "com.android.vending"}

// ClassifyApp 按包名归类（大小写不敏感，支持前缀）
func ClassifyApp(packageName string) string {
	lower := strings.ToLower(strings.TrimSpace(packageName))
	switch {
	case matchPackage(lower, DefaultShortFormApps):
		return AppCategoryShortForm
	case matchPackage(lower, DefaultSNSApps):
		return AppCategorySNS
	case matchPackage(lower, DefaultGameApps):
		return AppCategoryGame
	default:
		return AppCategoryOther
	}
}

// IsSystemPackage 判断是否为需要过滤的系统包
func IsSystemPackage(packageName string) bool {
	lower := strings.ToLower(packageName)
	for _, p := range alwaysIncludedPackages {
		if lower == p {
			return false
		}
	}
	for _, frag := range systemPackageFragments {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

func matchPackage(lower string, table []string) bool {
	for _, p := range table {
		p = strings.ToLower(p)
		if lower == p || (strings.HasSuffix(p, ".") && strings.HasPrefix(lower, p)) {
			return true
		}
	}
	return false
}
