// Package fixture 读取种子 JSON 文件，兼容 BOM、PowerShell 的 {"value":[...]} 包装以及数组前的杂质。
package fixture

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// ErrNotExist 种子文件不存在
var ErrNotExist = errors.New("fixture does not exist")

// Normalize 返回可直接解码为数组的 JSON
func Normalize(data []byte) ([]byte, error) {
	data = bytes.TrimPrefix(data, bom)

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		// 最后手段：从第一个 '[' 开始解析
		idx := bytes.IndexByte(data, '[')
		if idx == -1 || !json.Valid(data[idx:]) {
			return nil, err
		}
		return data[idx:], nil
	}

	if len(raw) > 0 && raw[0] == '{' {
		var wrapper struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Value) > 0 && wrapper.Value[0] == '[' {
			return wrapper.Value, nil
		}
	}
	return raw, nil
}

func Decode(data []byte, v any) error {
	normalized, err := Normalize(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(normalized, v)
}

func ReadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotExist, path)
		}
		return err
	}
	if err := Decode(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func WriteFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
