package util

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType 深度校验文件 MIME 类型
// allowedTypes: 允许的 MIME 前缀或完整类型，如 "image/", "image/png"
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsImage 检测是否为图片
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, MimeImage)
}

// IsDataURL 判断是否为 data:<mime>;base64,<payload> 形式
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:") && strings.Contains(s, ";base64,")
}

// DecodeImageDataURL 解码 data URL 并按内容校验真实图片类型，声明的类型不可信
func DecodeImageDataURL(s string, maxBytes int) (string, []byte, error) {
	if !IsDataURL(s) {
		return "", nil, errors.New("not a base64 data url")
	}
	payload := s[strings.Index(s, ";base64,")+len(";base64,"):]
	if base64.StdEncoding.DecodedLen(len(payload)) > maxBytes+3 {
		return "", nil, errors.New("image too large")
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, err
	}
	if len(data) > maxBytes {
		return "", nil, errors.New("image too large")
	}

	mimeType, err := ValidateMimeType(bytes.NewReader(data), AllowedAvatarTypes)
	if err != nil {
		return "", nil, err
	}
	return mimeType, data, nil
}

func ExtensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	return ".bin"
}
