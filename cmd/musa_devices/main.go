// musa_devices lists the devices, capabilities, memory and op builders of a
// GoMUSA accelerator.
//
// By default it selects the accelerator from GOMUSA_ACCELERATOR (or the first
// registered one). On machines without the MUSA driver, -sim installs the
// simulated runtime first.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/gomusa/gomusa/accelerators"
	_ "github.com/gomusa/gomusa/accelerators/default"
	"github.com/gomusa/gomusa/accelerators/musa"
	"github.com/gomusa/gomusa/accelerators/musa/musasim"
)

var (
	flagAccelerator = flag.String("accelerator", "",
		"Accelerator configuration, formatted as \"<name>:<config>\". "+
			"If empty, GOMUSA_ACCELERATOR and then the first registered accelerator are used.")
	flagSim = flag.Bool("sim", false,
		"Install the simulated MUSA runtime (2 devices) before selecting the accelerator.")
	flagSimDevices = flag.Int("sim_devices", 2, "Number of devices of the simulated runtime.")
	flagBuilders   = flag.Bool("builders", false, "Also list the registered op builders.")
)

var (
	headerRowStyle = lipgloss.NewStyle().Reverse(true).
			Padding(0, 2, 0, 2).Align(lipgloss.Center)

	oddRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFF")).
			PaddingLeft(1).PaddingRight(1)
	evenRowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#999")).
			PaddingLeft(1).PaddingRight(1)

	titleStyle = lipgloss.NewStyle().Bold(true).Padding(1, 4, 0, 4)
)

func newPlainTable() *lgtable.Table {
	return lgtable.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("99"))).
		StyleFunc(func(row, col int) (s lipgloss.Style) {
			if row == 1 {
				return headerRowStyle
			}
			if row%2 == 0 {
				s = oddRowStyle
			} else {
				s = evenRowStyle
			}
			return
		})
}

func main() {
	flag.Parse()

	if *flagSim {
		musa.SetRuntime(musasim.New(musasim.WithDeviceCount(*flagSimDevices)))
	}
	if musa.InstalledRuntime() == nil && strings.HasPrefix(*flagAccelerator, musa.BackendName) {
		klog.Errorf("No MUSA runtime installed: import a driver binding or pass -sim.")
		os.Exit(1)
	}

	var accel accelerators.Accelerator
	if *flagAccelerator == "" {
		// Fall back to GOMUSA_ACCELERATOR and then the first registered accelerator.
		accel = accelerators.New()
	} else {
		accel = accelerators.NewWithConfig(*flagAccelerator)
	}
	defer accel.Finalize()
	report(accel)
}

func report(accel accelerators.Accelerator) {
	fmt.Println(titleStyle.Render(accel.Description()))
	fmt.Printf("  communication backend: %s\n", accel.CommunicationBackend())
	fmt.Printf("  available: %v, fp16: %v, bf16: %v\n",
		accel.IsAvailable(), accel.IsFP16Supported(), accel.IsBF16Supported())
	fmt.Printf("  optional features: %s\n", featureList(accel.Capabilities()))

	count := must.M1(accel.DeviceCount())
	table := newPlainTable()
	table.Row("Device", "Name", "Compute", "Total Memory", "UUID")
	for i := 0; i < count; i++ {
		device := accelerators.DeviceNum(i)
		props := must.M1(accel.DeviceProperties(device))
		table.Row(
			accel.DeviceName(device),
			props.Name,
			props.Compute(),
			humanize.IBytes(props.TotalMemory),
			props.UUID,
		)
	}
	fmt.Println(table.Render())

	if *flagBuilders {
		fmt.Printf("Op builders (%s source):\n", accel.OpBuilderSource())
		for _, name := range accel.OpBuilderNames() {
			fmt.Printf("  - %s\n", name)
		}
	}
}

func featureList(caps accelerators.Capabilities) string {
	var supported []string
	for _, feature := range accelerators.AllFeatures {
		if caps.Has(feature) {
			supported = append(supported, feature.String())
		}
	}
	if len(supported) == 0 {
		return "(none)"
	}
	return strings.Join(supported, ", ")
}
