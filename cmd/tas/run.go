package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tangle-project/tangle/config"
	"github.com/tangle-project/tangle/isa"
	"github.com/tangle-project/tangle/loader"
	"github.com/tangle-project/tangle/vm"
)

func newRunCmd() *cobra.Command {
	var (
		traceFile     string
		statsFile     string
		coverageFile  string
		regTraceFile  string
		flagTraceFile string
		memTraceFile  string
		symbolsFile   string
	)

	cmd := &cobra.Command{
		Use:   "run HEXFILE",
		Short: "Execute a hex image on the reference CPU model to halt or the cycle limit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHex(args[0], runOpts{
				traceFile:     traceFile,
				statsFile:     statsFile,
				coverageFile:  coverageFile,
				regTraceFile:  regTraceFile,
				flagTraceFile: flagTraceFile,
				memTraceFile:  memTraceFile,
				symbolsFile:   symbolsFile,
			})
		},
	}

	cmd.Flags().StringVar(&traceFile, "trace-file", "", "enable an execution trace, written to this file")
	cmd.Flags().StringVar(&statsFile, "stats-file", "", "enable performance statistics (JSON), written to this file")
	cmd.Flags().StringVar(&coverageFile, "coverage-file", "", "enable code coverage tracking, written to this file")
	cmd.Flags().StringVar(&regTraceFile, "register-trace-file", "", "enable register access tracing, written to this file")
	cmd.Flags().StringVar(&flagTraceFile, "flag-trace-file", "", "enable condition flag change tracing, written to this file")
	cmd.Flags().StringVar(&memTraceFile, "mem-trace-file", "", "enable memory access tracing, written to this file")
	cmd.Flags().StringVar(&symbolsFile, "symbols", "", "assembly source to pull label names from, for trace/coverage address annotation")
	return cmd
}

type runOpts struct {
	traceFile     string
	statsFile     string
	coverageFile  string
	regTraceFile  string
	flagTraceFile string
	memTraceFile  string
	symbolsFile   string
}

func runHex(hexPath string, opts runOpts) error {
	machine, err := loadAndRunHex(hexPath, opts)
	if err != nil {
		return err
	}
	printFinalState(machine)
	return nil
}

// loadAndRunHex loads hexPath into a fresh VM and runs it to halt or
// the cycle limit, wiring whatever instrumentation opts/config.Load
// requested. Split out from runHex so tests can inspect the machine's
// final state directly instead of scraping stdout.
func loadAndRunHex(hexPath string, opts runOpts) (*vm.VM, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	f, err := os.Open(hexPath) // #nosec G304 -- user-specified hex image path
	if err != nil {
		return nil, fmt.Errorf("opening hex image: %w", err)
	}
	defer f.Close()

	machine := vm.NewVM(cfg.Assembler.PCWidth)
	machine.MaxCycles = cfg.CPU.MaxCycles

	if err := loader.LoadHex(f, machine); err != nil {
		return nil, fmt.Errorf("loading hex image: %w", err)
	}

	closers, err := wireInstrumentation(machine, cfg, opts)
	if err != nil {
		return nil, err
	}
	defer closers()

	if err := machine.Run(); err != nil {
		return nil, fmt.Errorf("runtime error at PC=0x%04x: %w", machine.CPU.PC, err)
	}

	return machine, nil
}

// wireInstrumentation opts the VM into the diagnostic trackers the CLI
// flags (or config file) requested; every tracker is nil by default
// (vm.Step's instrumentRetire is a no-op without one). It returns a
// function that flushes and closes whatever it opened.
func wireInstrumentation(machine *vm.VM, cfg *config.Config, opts runOpts) (func(), error) {
	var closeFns []func()
	closeAll := func() {
		for i := len(closeFns) - 1; i >= 0; i-- {
			closeFns[i]()
		}
	}

	syms, err := loadSymbolsFile(opts.symbolsFile)
	if err != nil {
		return nil, err
	}

	if opts.traceFile != "" || cfg.Trace.Enabled {
		path := opts.traceFile
		if path == "" {
			path = cfg.Trace.OutputFile
		}
		tf, err := os.Create(path) // #nosec G304 -- user-specified trace output path
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("creating trace file: %w", err)
		}
		machine.Trace = vm.NewExecutionTrace(tf)
		machine.Trace.IncludeFlags = cfg.Trace.IncludeFlags
		machine.Trace.Start()
		closeFns = append(closeFns, func() { _ = machine.Trace.Flush(); _ = tf.Close() })
	}

	if opts.statsFile != "" || cfg.Statistics.Enabled {
		machine.Stats = vm.NewPerformanceStatistics()
		machine.Stats.Start()
		path := opts.statsFile
		if path == "" {
			path = cfg.Statistics.OutputFile
		}
		closeFns = append(closeFns, func() {
			machine.Stats.Finalize()
			sf, err := os.Create(path) // #nosec G304 -- user-specified stats output path
			if err != nil {
				fmt.Fprintf(os.Stderr, "writing stats: %v\n", err)
				return
			}
			defer sf.Close()
			if err := machine.Stats.ExportJSON(sf); err != nil {
				fmt.Fprintf(os.Stderr, "writing stats: %v\n", err)
			}
		})
	}

	if opts.coverageFile != "" || cfg.Coverage.Enabled {
		path := opts.coverageFile
		if path == "" {
			path = "coverage.txt"
		}
		cf, err := os.Create(path) // #nosec G304 -- user-specified coverage output path
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("creating coverage file: %w", err)
		}
		machine.Coverage = vm.NewCodeCoverage(cf)
		machine.Coverage.SetCodeRange(0, uint32(machine.Memory.Size()))
		machine.Coverage.LoadSymbols(syms)
		machine.Coverage.Start()
		closeFns = append(closeFns, func() { _ = machine.Coverage.Flush(); _ = cf.Close() })
	}

	if opts.regTraceFile != "" {
		rf, err := os.Create(opts.regTraceFile) // #nosec G304 -- user-specified register trace output path
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("creating register trace file: %w", err)
		}
		machine.RegTrace = vm.NewRegisterTrace(rf)
		machine.RegTrace.LoadSymbols(syms)
		machine.RegTrace.Start()
		closeFns = append(closeFns, func() { _ = machine.RegTrace.Flush(); _ = rf.Close() })
	}

	if opts.flagTraceFile != "" {
		ff, err := os.Create(opts.flagTraceFile) // #nosec G304 -- user-specified flag trace output path
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("creating flag trace file: %w", err)
		}
		machine.FlagTrace = vm.NewFlagTrace(ff)
		machine.FlagTrace.LoadSymbols(syms)
		machine.FlagTrace.Start(machine.CPU.Flags)
		closeFns = append(closeFns, func() { _ = machine.FlagTrace.Flush(); _ = ff.Close() })
	}

	if opts.memTraceFile != "" {
		mf, err := os.Create(opts.memTraceFile) // #nosec G304 -- user-specified memory trace output path
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("creating memory trace file: %w", err)
		}
		machine.MemTrace = vm.NewMemoryTrace(mf)
		machine.MemTrace.Start()
		closeFns = append(closeFns, func() { _ = machine.MemTrace.Flush(); _ = mf.Close() })
	}

	return closeAll, nil
}

func printFinalState(machine *vm.VM) {
	cpu := machine.CPU
	fmt.Printf("halted: %s after %d cycles\n", runStatus(machine.State), cpu.Cycles)
	fmt.Printf("PC: 0x%04x\n", cpu.PC)
	for i := 0; i < isa.NumRegisters; i += 2 {
		fmt.Printf("r%d: 0x%04x    r%d: 0x%04x\n", i, cpu.GetRegister(i), i+1, cpu.GetRegister(i+1))
	}
	fmt.Printf("flags: Z=%v S=%v C=%v O=%v\n", cpu.Flags.ZF, cpu.Flags.SF, cpu.Flags.CF, cpu.Flags.OF)
}

func runStatus(s vm.ExecutionState) string {
	switch s {
	case vm.ExecHalted:
		return "halted"
	case vm.ExecCycleLimitReached:
		return "cycle limit reached"
	case vm.ExecError:
		return "error"
	default:
		return "running"
	}
}
