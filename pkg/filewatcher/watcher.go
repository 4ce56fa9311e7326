package filewatcher

import (
	"exam_review_backend/pkg/logger"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch 监视进度文档所在目录，文件被写入或替换后防抖触发 onChange。
// 进度文档可能被本进程之外的写入者改掉（恢复备份、手工编辑），
// Store 的缓存没有订阅机制，只能由这里强制它失效。
// 监视目录而不是文件本身，原子替换（rename 覆盖）也能收到事件。
func Watch(dataFile string, onChange func()) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Log.Error("failed to create file watcher", zap.Error(err))
		return
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(dataFile)
	if err != nil {
		logger.Log.Error("failed to resolve data file path", zap.Error(err))
		return
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		logger.Log.Error("failed to watch data directory",
			zap.String("dir", filepath.Dir(absPath)),
			zap.Error(err))
		return
	}

	var mu sync.Mutex
	timer := time.NewTimer(0)
	<-timer.C

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != absPath {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// 防抖处理
				mu.Lock()
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(1 * time.Second)
				mu.Unlock()
			}
		case <-timer.C:
			logger.Log.Info("progress document changed on disk",
				zap.String("path", absPath))
			onChange()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("file watcher error", zap.Error(err))
		}
	}
}
