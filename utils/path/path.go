package path

import (
	"os"
	"path/filepath"
	"runtime"
)

// RootPath 傳回專案根目錄的絕對路徑
//
// It resolves to the source tree when it exists (go run, tests) and to the
// working directory for deployed binaries.
func RootPath() string {
	// /project/utils/path/path.go → /project
	if _, filename, _, ok := runtime.Caller(0); ok {
		root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
		if ok, _ := Exists(filepath.Join(root, "go.mod")); ok {
			return root
		}
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// Exists 路径是否存在
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
