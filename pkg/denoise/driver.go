package denoise

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/codahale/hdrhistogram"

	"github.com/yesilcimenahmet/oidn/pkg/tensor"
)

// A Driver runs one evaluation pass: it walks the sample groups, feeds every
// input variant through the engine, scores outputs against targets and hands
// tensors to the output composer. Strictly sequential; the first error
// aborts the whole run.
type Driver struct {
	Engine     *Engine
	DataDir    string
	OutputDir  string
	ResultName string
	TagEpoch   bool // append _<epoch> to output names
	Metrics    []string
	Formats    []string
	SaveAll    bool // also write inputs and targets
	Verbosity  int
}

// Run processes all groups and reports the per-metric run averages.
func (d *Driver)Run(groups []ImageSampleGroup) (map[string]float64, error) {
	acc := NewAccumulator()
	composer := Composer{Kind: d.Engine.Features.Main(), Formats: d.Formats}

	// Wall-clock per inference, microseconds up to a minute
	latency := hdrhistogram.New(1, 60_000_000, 3)

	for _, group := range groups {
		if err := d.runGroup(group, acc, composer, latency); err != nil {
			return nil, err
		}
	}

	if acc.Count() > 0 && d.Verbosity > 0 {
		log.Printf("inference latency: p50=%v p95=%v mean=%v",
			time.Duration(latency.ValueAtQuantile(50))*time.Microsecond,
			time.Duration(latency.ValueAtQuantile(95))*time.Microsecond,
			time.Duration(latency.Mean())*time.Microsecond)
	}

	return acc.Averages(), nil
}

func (d *Driver)runGroup(group ImageSampleGroup, acc *Accumulator, composer Composer, latency *hdrhistogram.Histogram) error {
	main := d.Engine.Features.Main()
	numMain := d.Engine.Features.NumMainChannels()

	groupDir := filepath.Join(d.OutputDir, filepath.Dir(filepath.FromSlash(group.Name)))
	if err := os.MkdirAll(groupDir, 0755); err != nil {
		return fmt.Errorf("mkdir %s: %v", groupDir, err)
	}

	// The group's tonemap exposure, used for every display transform below:
	// from the sidecar if there is one, from EXIF if the images carry it,
	// else neutral.
	tonemapExposure := 1.0
	mdExposure, sidecar, err := LoadGroupMetadata(d.DataDir, group.Name)
	if err != nil {
		return err
	}
	if sidecar != nil {
		tonemapExposure = mdExposure
		outName := filepath.Join(d.OutputDir, filepath.FromSlash(group.Name)) + ".json"
		if err := os.WriteFile(outName, sidecar, 0644); err != nil {
			return fmt.Errorf("metadata copy '%s': %v", outName, err)
		}
	} else if group.Target != "" {
		if ev, ok := ExifExposure(d.DataDir, group.Target, d.Engine.Features); ok {
			tonemapExposure = ev
		}
	}

	// Hold the target in display space for the metric comparisons
	var target, targetDisplay *tensor.Tensor
	if group.Target != "" {
		target, err = LoadFeatures(d.DataDir, group.Target, FeatureSet{Features: []Feature{main}})
		if err != nil {
			return err
		}
		targetDisplay = ToDisplay(target, main, tonemapExposure)
	}

	for _, inputName := range group.Inputs {
		input, err := LoadFeatures(d.DataDir, inputName, d.Engine.Features)
		if err != nil {
			return err
		}

		exposure := AutoExposure(input, d.Engine.Features)

		start := time.Now()
		output, err := d.Engine.Process(input, exposure)
		if err != nil {
			return fmt.Errorf("infer '%s': %v", inputName, err)
		}
		latency.RecordValue(time.Since(start).Microseconds())

		input = input.Channels(0, numMain) // keep only the main feature
		inputDisplay := ToDisplay(input, main, tonemapExposure)
		outputDisplay := ToDisplay(output, main, tonemapExposure)

		metricStr := ""
		if target != nil && len(d.Metrics) > 0 {
			for _, metric := range d.Metrics {
				value, err := Compare(outputDisplay, targetDisplay, metric)
				if err != nil {
					return err
				}
				acc.Add(metric, value)
				if metricStr != "" {
					metricStr += ", "
				}
				metricStr += fmt.Sprintf("%s=%.4f", metric, value)
			}
			acc.Tick()

			if d.Verbosity > 0 {
				diffName := filepath.Join(d.OutputDir, filepath.FromSlash(inputName)) + ".diff.png"
				if err := DumpDiff(diffName, inputName, outputDisplay, targetDisplay); err != nil {
					return err
				}
			}
		}

		outputName := inputName + "." + d.ResultName
		if d.TagEpoch {
			outputName += fmt.Sprintf("_%d", d.Engine.Epoch)
		}
		if d.SaveAll {
			err := composer.Write(filepath.Join(d.OutputDir, filepath.FromSlash(inputName)), input, inputDisplay)
			if err != nil {
				return err
			}
		}
		err = composer.Write(filepath.Join(d.OutputDir, filepath.FromSlash(outputName)), output, outputDisplay)
		if err != nil {
			return err
		}

		if metricStr != "" {
			metricStr = " " + metricStr
		}
		log.Printf("%s ...%s", inputName, metricStr)
	}

	if d.SaveAll && target != nil {
		err := composer.Write(filepath.Join(d.OutputDir, filepath.FromSlash(group.Target)), target, targetDisplay)
		if err != nil {
			return err
		}
	}

	return nil
}
