package telemetry

import (
	"os"
	"runtime"
	"strings"
	"sync"
)

// SystemInfo holds static host information captured once at startup
type SystemInfo struct {
	OS               string `json:"os"`
	Arch             string `json:"arch"`
	Hostname         string `json:"hostname"`
	CPULogical       int    `json:"cpu_logical"`
	GoVersion        string `json:"go_version"`
	InContainer      bool   `json:"in_container"`
	ContainerRuntime string `json:"container_runtime,omitempty"`
}

var (
	systemInfo     *SystemInfo
	systemInfoOnce sync.Once
)

// GetSystemInfo returns cached system information (captured once)
func GetSystemInfo() *SystemInfo {
	systemInfoOnce.Do(func() {
		systemInfo = captureSystemInfo()
	})
	return systemInfo
}

func captureSystemInfo() *SystemInfo {
	info := &SystemInfo{
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
		CPULogical: runtime.NumCPU(),
		GoVersion:  runtime.Version(),
		Hostname:   "unknown",
	}
	if hostname, err := os.Hostname(); err == nil {
		info.Hostname = hostname
	}
	info.InContainer, info.ContainerRuntime = detectContainer()
	return info
}

// detectContainer checks if running in a container
func detectContainer() (bool, string) {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true, "docker"
	}
	if _, err := os.Stat("/var/run/secrets/kubernetes.io"); err == nil {
		return true, "kubernetes"
	}

	data, err := os.ReadFile("/proc/1/cgroup")
	if err != nil {
		return false, ""
	}
	content := string(data)
	switch {
	case strings.Contains(content, "kubepods"):
		return true, "kubernetes"
	case strings.Contains(content, "docker"):
		return true, "docker"
	case strings.Contains(content, "containerd"):
		return true, "containerd"
	}
	return false, ""
}
