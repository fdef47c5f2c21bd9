package main

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile 命令行客户端的连接配置，保存在 ~/.quizcli/profile.yaml
type Profile struct {
	Server  string `yaml:"server"`
	Store   string `yaml:"store"`
	Timeout int    `yaml:"timeout_seconds"`
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".quizcli"
	}
	return filepath.Join(home, ".quizcli")
}

func defaultProfile(dir string) Profile {
	return Profile{
		Server:  "http://localhost:8080",
		Store:   filepath.Join(dir, "store.json"),
		Timeout: 15,
	}
}

// loadProfile 文件不存在时返回默认值
func loadProfile(path string) (Profile, error) {
	p := defaultProfile(filepath.Dir(path))
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, err
	}
	if p.Timeout <= 0 {
		p.Timeout = 15
	}
	return p, nil
}

func saveProfile(path string, p Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
