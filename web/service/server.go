package service

import (
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"recipe-box/config"
	"recipe-box/logger"
	"recipe-box/util/sys"
)

var appStart = time.Now()

// Status represents system and application state for the status page.
// Probe failures degrade single fields instead of failing the whole snapshot.
type Status struct {
	T        time.Time `json:"-"`
	Version  string    `json:"version"`
	Cpu      float64   `json:"cpu"`
	CpuCores int       `json:"cpuCores"`
	Mem      struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	Disk struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"disk"`
	Uptime    uint64          `json:"uptime"`
	Loads     []float64       `json:"loads"`
	TcpCount  int             `json:"tcpCount"`
	UdpCount  int             `json:"udpCount"`
	RecipeApi RecipeApiHealth `json:"recipeApi"`
	AppStats  struct {
		Goroutines int    `json:"goroutines"`
		Mem        uint64 `json:"mem"`
		Uptime     uint64 `json:"uptime"`
	} `json:"appStats"`
	Users int64 `json:"users"`
}

// ServerService collects host and application status.
type ServerService struct {
	userService   UserService
	recipeService RecipeService
}

func (s *ServerService) GetStatus() *Status {
	status := &Status{
		T:       time.Now(),
		Version: config.GetVersion(),
	}

	// CPU stats
	percents, err := cpu.Percent(0, false)
	if err != nil {
		logger.Warning("get cpu percent failed:", err)
	} else if len(percents) > 0 {
		status.Cpu = percents[0]
	}

	status.CpuCores, err = cpu.Counts(false)
	if err != nil {
		logger.Warning("get cpu cores count failed:", err)
	}

	// Uptime
	upTime, err := host.Uptime()
	if err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.Uptime = upTime
	}

	// Memory stats
	memInfo, err := mem.VirtualMemory()
	if err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	// Disk stats
	diskInfo, err := disk.Usage("/")
	if err != nil {
		logger.Warning("get disk usage failed:", err)
	} else {
		status.Disk.Current = diskInfo.Used
		status.Disk.Total = diskInfo.Total
	}

	// Load averages
	avgState, err := load.Avg()
	if err != nil {
		logger.Warning("get load avg failed:", err)
	} else {
		status.Loads = []float64{avgState.Load1, avgState.Load5, avgState.Load15}
	}

	// Connection counts
	status.TcpCount, err = sys.GetTCPCount()
	if err != nil {
		logger.Warning("get tcp connections failed:", err)
	}
	status.UdpCount, err = sys.GetUDPCount()
	if err != nil {
		logger.Warning("get udp connections failed:", err)
	}

	// Application stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	status.AppStats.Goroutines = runtime.NumGoroutine()
	status.AppStats.Mem = memStats.Alloc
	status.AppStats.Uptime = uint64(time.Since(appStart).Seconds())

	status.RecipeApi = s.recipeService.ApiHealth()

	users, err := s.userService.UserCount()
	if err != nil {
		logger.Warning("get user count failed:", err)
	} else {
		status.Users = users
	}

	return status
}

// GetLogs returns buffered log lines for the status page.
func (s *ServerService) GetLogs(count int, level string) []string {
	return logger.GetLogs(count, level)
}
