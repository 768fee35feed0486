package sysinfo

import (
	"log"
	"supply-chain-optimizer/internal/domain"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"
)

// Collect describes the machine solves run on. Probes that fail leave their
// field empty; a partial description is still useful next to solve times.
func Collect() domain.HostInfo {
	var info domain.HostInfo

	if h, err := host.Info(); err != nil {
		log.Printf("sysinfo: host lookup failed: %v", err)
	} else {
		info.Platform = h.Platform
	}

	if c, err := cpu.Info(); err != nil {
		log.Printf("sysinfo: cpu lookup failed: %v", err)
	} else if len(c) > 0 {
		info.CPUModel = c[0].ModelName
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.Printf("sysinfo: memory lookup failed: %v", err)
	} else {
		info.MemoryGB = vm.Total / 1024 / 1024 / 1024
	}

	return info
}
