package main

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Report host resources and suggest a --jobs value",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor()
	},
}

func runDoctor() error {
	counts, err := cpu.Counts(true)
	if err != nil {
		return fmt.Errorf("doctor: cpu count: %w", err)
	}
	fmt.Printf("logical CPUs:  %d\n", counts)

	if avg, err := load.Avg(); err == nil {
		fmt.Printf("load average:  %.2f %.2f %.2f\n", avg.Load1, avg.Load5, avg.Load15)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("memory:        %.1f GiB used of %.1f GiB\n",
			float64(vm.Used)/(1<<30), float64(vm.Total)/(1<<30))
	}

	suggested := counts
	if suggested < 1 {
		suggested = 1
	}
	fmt.Printf("suggested:     --jobs %d\n", suggested)
	return nil
}
