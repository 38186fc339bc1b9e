package kv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ValentinKolb/fsKV/cmd/util"
	"github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for fsKV stores",
		Long:    util.WrapString("Runs insert, lookup and remove against the configured store and prints latency statistics. All test keys are removed again afterwards."),
		Args:    cobra.NoArgs,
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__perf"
	perfOps        = 1000
	perfValueSize  = 128
	perfLargeKB    = 1024
	perfSkip       = make([]string, 0)
	perfPrometheus = false
)

// perfPhases is the order in which the benchmarks run
var perfPhases = []string{"insert", "lookup", "remove", "insert-large"}

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. insert-large,lookup)"))
	key = "ops"
	perfTestCmd.Flags().Int(key, 1000, util.WrapString("Number of operations per benchmark"))
	key = "value-size"
	perfTestCmd.Flags().Int(key, 128, util.WrapString("Size of the values for insert, lookup and remove (in bytes)"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 1024, util.WrapString("How large the value for the insert-large test should be (in KB)"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
	key = "prometheus"
	perfTestCmd.Flags().Bool(key, false, util.WrapString("Print the store metrics in Prometheus text format after the run"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfOps = viper.GetInt("ops")
	perfValueSize = viper.GetInt("value-size")
	perfLargeKB = viper.GetInt("large-value-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")
	perfPrometheus = viper.GetBool("prometheus")

	if perfOps <= 0 {
		return fmt.Errorf("ops must be positive, got %d", perfOps)
	}
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	fmt.Println("Performance testing tool for fsKV stores")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(util.GetStoreConfig().String())
	fmt.Printf("Operations: %d\n", perfOps)
	fmt.Println()

	fmt.Println("starting tests...")

	registry := gometrics.NewRegistry()
	value := strings.Repeat("v", perfValueSize)
	largeValue := strings.Repeat("L", perfLargeKB*1024)

	for _, phase := range perfPhases {
		if shouldSkip(phase) {
			printResult(phase, nil)
			continue
		}

		timer := gometrics.GetOrRegisterTimer(phase, registry)
		errors := gometrics.GetOrRegisterCounter(phase+".errors", registry)
		measure := func(i int, op func(key string) error) {
			start := time.Now()
			err := op(perfKey(phase, i))
			timer.UpdateSince(start)
			if err != nil {
				errors.Inc(1)
				log.Warningf("(%s) - %v", phase, err)
			}
		}

		switch phase {
		case "insert":
			for i := 0; i < perfOps; i++ {
				measure(i, func(k string) error { return fsStore.Insert(k, value) })
			}
			cleanup(phase)
		case "lookup":
			prepare(phase, value)
			var out string
			for i := 0; i < perfOps; i++ {
				measure(i, func(k string) error { return fsStore.Lookup(k, &out) })
			}
			cleanup(phase)
		case "remove":
			prepare(phase, value)
			for i := 0; i < perfOps; i++ {
				measure(i, func(k string) error { return fsStore.Remove(k, nil) })
			}
		case "insert-large":
			for i := 0; i < perfOps; i++ {
				measure(i, func(k string) error { return fsStore.Insert(k, largeValue) })
			}
			cleanup(phase)
		}

		printResult(phase, timer)
		if n := errors.Count(); n > 0 {
			fmt.Printf("%-20s%d errors\n", "", n)
		}
	}

	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, registry); err != nil {
			return err
		}
		fmt.Printf("\nresults written to %s\n", csvPath)
	}

	if perfPrometheus {
		fmt.Println()
		metrics.WritePrometheus(os.Stdout, false)
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

func perfKey(phase string, i int) string {
	return fmt.Sprintf("%s-%s-%d", perfKeyPrefix, phase, i)
}

// prepare inserts the keys a phase works on, these inserts are not timed
func prepare(phase string, value string) {
	for i := 0; i < perfOps; i++ {
		if err := fsStore.Insert(perfKey(phase, i), value); err != nil {
			log.Warningf("(%s) - error preparing key: %v", phase, err)
		}
	}
}

// cleanup removes the keys of a phase
func cleanup(phase string) {
	for i := 0; i < perfOps; i++ {
		if err := fsStore.Remove(perfKey(phase, i), nil); err != nil {
			log.Warningf("(%s) - error deleting key: %v", phase, err)
		}
	}
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, timer gometrics.Timer) {
	if timer == nil || timer.Count() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	ps := timer.Percentiles([]float64{0.5, 0.99})
	fmt.Printf("%-20smean %s\tp50 %s\tp99 %s\t%.0f ops/sec\n",
		test,
		time.Duration(timer.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		opsPerSec(timer),
	)
}

func opsPerSec(timer gometrics.Timer) float64 {
	mean := timer.Mean()
	if mean <= 0 {
		return 0
	}
	return 1e9 / mean
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, registry gometrics.Registry) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	conf := util.GetStoreConfig()

	header := []string{
		"Test", "Count", "Errors", "MeanNs", "P50Ns", "P99Ns", "MaxNs", "OpsPerSec",
		"Root", "Codec", "SyncWrites", "ValueSize", "LargeValueSizeKB",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, test := range perfPhases {
		timer, ok := registry.Get(test).(gometrics.Timer)
		if !ok {
			continue
		}
		var errCount int64
		if c, ok := registry.Get(test + ".errors").(gometrics.Counter); ok {
			errCount = c.Count()
		}

		ps := timer.Percentiles([]float64{0.5, 0.99})
		row := []string{
			test,
			strconv.FormatInt(timer.Count(), 10),
			strconv.FormatInt(errCount, 10),
			fmt.Sprintf("%.0f", timer.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			strconv.FormatInt(timer.Max(), 10),
			fmt.Sprintf("%.0f", opsPerSec(timer)),
			conf.Root,
			conf.Codec,
			strconv.FormatBool(conf.SyncWrites),
			strconv.Itoa(perfValueSize),
			strconv.Itoa(perfLargeKB),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
