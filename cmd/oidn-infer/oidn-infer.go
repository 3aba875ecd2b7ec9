package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/yesilcimenahmet/oidn/pkg/denoise"
)

var (
	fResultsDir string
	fResult     string
	fEpoch      int
	fDataDir    string
	fInputData  string
	fOutputDir  string
	fMetrics    string
	fFormats    string
	fSaveAll    bool
	fVerbosity  int
)

func init() {
	flag.StringVar(&fResultsDir, "resultsdir", "results", "directory holding training results")
	flag.StringVar(&fResult, "result", "", "name of the training result to evaluate")
	flag.IntVar(&fEpoch, "epoch", 0, "checkpoint epoch to use (0 = latest)")
	flag.StringVar(&fDataDir, "datadir", "data", "directory holding datasets")
	flag.StringVar(&fInputData, "data", "test", "name of the dataset to process")
	flag.StringVar(&fOutputDir, "outdir", "infer", "directory to write outputs under")
	flag.StringVar(&fMetrics, "metric", "", "comma-separated metrics to compute: "+strings.Join(denoise.Metrics, ","))
	flag.StringVar(&fFormats, "format", "png", "comma-separated output formats: "+strings.Join(denoise.Formats, ","))
	flag.BoolVar(&fSaveAll, "saveall", false, "also save the input and target images")
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.Parse()
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func main() {
	if fResult == "" {
		log.Fatalf("no -result given")
	}
	for _, f := range splitList(fFormats) {
		if !denoise.ValidFormat(f) {
			log.Fatalf("format '%s' not recognized, wanted %v", f, denoise.Formats)
		}
	}
	for _, m := range splitList(fMetrics) {
		if !denoise.ValidMetric(m) {
			log.Fatalf("metric '%s' not recognized, wanted %v", m, denoise.Metrics)
		}
	}

	engine, err := denoise.NewEngine(fResultsDir, fResult, fEpoch)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("result: %s, epoch %d, features %s", fResult, engine.Epoch, engine.Features)

	dataDir := filepath.Join(fDataDir, fInputData)
	groups, err := denoise.DiscoverGroups(dataDir, engine.Features)
	if err != nil {
		log.Fatal(err)
	}
	if len(groups) == 0 {
		log.Fatalf("no image sample groups found in %s", dataDir)
	}

	driver := denoise.Driver{
		Engine:     engine,
		DataDir:    dataDir,
		OutputDir:  filepath.Join(fOutputDir, fInputData),
		ResultName: fResult,
		TagEpoch:   fEpoch != 0,
		Metrics:    splitList(fMetrics),
		Formats:    splitList(fFormats),
		SaveAll:    fSaveAll,
		Verbosity:  fVerbosity,
	}

	averages, err := driver.Run(groups)
	if err != nil {
		log.Fatal(err)
	}

	if len(averages) > 0 {
		names := []string{}
		for name := range averages {
			names = append(names, name)
		}
		sort.Strings(names)
		summary := ""
		for _, name := range names {
			if summary != "" {
				summary += ", "
			}
			summary += fmt.Sprintf("%s_avg=%.4f", name, averages[name])
		}
		log.Printf("%s: %s", fResult, summary)
	}
}
