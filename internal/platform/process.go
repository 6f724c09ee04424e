package platform

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/process"
)

// ResourceSample is a point-in-time read of process resource usage, fed
// into observability.HealthSnapshot. Grounded on the teacher's
// collectMetrics, which samples process.NewProcess(pid).MemoryInfo() on
// an interval.
type ResourceSample struct {
	RSSBytes   uint64
	Goroutines int
}

// SampleSelf reads the current process's resident memory via gopsutil and
// the current goroutine count, the same pairing the teacher's
// collectMetrics logs every interval.
func SampleSelf() (ResourceSample, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return ResourceSample{}, err
	}
	memInfo, err := proc.MemoryInfo()
	if err != nil {
		return ResourceSample{}, err
	}
	return ResourceSample{
		RSSBytes:   memInfo.RSS,
		Goroutines: runtime.NumGoroutine(),
	}, nil
}
