// Package platform provides cgroup-aware resource-limit detection,
// grounded on the teacher's root cgroup.go (memory limit reader) and
// collectMetrics (process RSS via gopsutil).
package platform

import (
	"os"
	"strconv"
	"strings"
)

// MemoryLimit returns the container memory limit in bytes, read from
// cgroup v2 first then v1, falling back to 0 (unlimited/non-containerized)
// exactly as the teacher's getMemoryLimit does.
func MemoryLimit() (int64, error) {
	if data, err := os.ReadFile("/sys/fs/cgroup/memory.max"); err == nil {
		limitStr := strings.TrimSpace(string(data))
		if limitStr != "max" {
			return strconv.ParseInt(limitStr, 10, 64)
		}
	}

	if data, err := os.ReadFile("/sys/fs/cgroup/memory/memory.limit_in_bytes"); err == nil {
		limitStr := strings.TrimSpace(string(data))
		return strconv.ParseInt(limitStr, 10, 64)
	}

	return 0, nil
}

// FanOutPoolSize picks a safe worker-pool size for internal/fanout based
// on detected memory, the same shape as the teacher's
// calculateMaxConnections (reserve a runtime overhead, divide the rest by
// a per-unit cost, clamp to a sane range) — repurposed here from sizing
// WebSocket connection capacity to sizing the callback/hook worker pool,
// since this server tracks subscriptions and accounts, not live
// connections.
func FanOutPoolSize(memoryLimitBytes int64) int {
	const (
		runtimeOverheadBytes = 64 * 1024 * 1024
		bytesPerWorker       = 64 * 1024
		minWorkers           = 4
		maxWorkers           = 256
		defaultWorkers       = 16
	)

	if memoryLimitBytes == 0 {
		return defaultWorkers
	}

	available := memoryLimitBytes - runtimeOverheadBytes
	if available < 0 {
		available = memoryLimitBytes / 2
	}

	workers := int(available / bytesPerWorker)
	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}
	return workers
}
