package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 头像上传相关常量
const (
	MimeImage       = "image/"
	MaxAvatarBytes  = 2 << 20
	MaxInlineAvatar = 64 // 超过该长度且非 data URL 的头像视为非法
	AvatarDirectory = "avatars"
)

var (
	AllowedAvatarTypes = []string{"image/png", "image/jpeg", "image/gif", "image/webp"}
)
