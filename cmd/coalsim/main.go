// coalsim runs coalescent simulations from the built-in model catalog or from
// explicit parameters, reports summary statistics per replicate, and
// optionally writes each replicate to a .cts file with a sqlite site index.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/carbocation/pfx"
	"github.com/gonum/stat"

	"github.com/genostats/coalesce"
	"github.com/genostats/coalesce/catalog"
	"github.com/genostats/coalesce/cts"
	"github.com/genostats/coalesce/popstats"
)

func main() {
	species := flag.String("species", "", "Catalog species to simulate (e.g., HomSap)")
	model := flag.String("model", "", "Catalog model name (e.g., BottleneckLite)")
	catalogPath := flag.String("catalog", "", "Optional CSV file of additional catalog models")
	list := flag.Bool("list", false, "List the available catalog models and exit")

	samples := flag.Int("samples", 0, "Number of sampled haplotypes (overrides the catalog entry)")
	ne := flag.Float64("ne", 0, "Diploid effective population size (overrides the catalog entry)")
	length := flag.Float64("length", 0, "Sequence length in base pairs (overrides the catalog entry)")
	recomb := flag.Float64("recomb", -1, "Per-bp per-generation recombination rate (overrides the catalog entry)")
	mutation := flag.Float64("mutation", -1, "Per-bp per-generation mutation rate (overrides the catalog entry)")
	events := flag.String("events", "", "Size history as time=size;time=size pairs, ordered into the past (overrides the catalog entry)")

	replicates := flag.Int("replicates", 1, "Number of independent replicates to simulate")
	seed := flag.Uint64("seed", 0, "Random seed; 0 draws one from the clock. Replicate i uses seed+i-1")
	out := flag.String("out", "", "Output .cts filename; with multiple replicates an _NNN suffix is inserted")
	index := flag.Bool("index", false, "Also write a .csi sqlite site index next to each .cts file")
	compressionName := flag.String("compression", "zstd", "Genotype block compression: none, zlib, or zstd")
	flag.Parse()

	if strings.HasPrefix(*out, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		*out = filepath.Join(usr.HomeDir, (*out)[2:])
	}

	if strings.HasPrefix(*catalogPath, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		*catalogPath = filepath.Join(usr.HomeDir, (*catalogPath)[2:])
	}

	if *catalogPath != "" {
		f, err := os.Open(*catalogPath)
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		n, err := catalog.LoadCSV(f)
		f.Close()
		if err != nil {
			log.Fatalln(err)
		}
		log.Println("Merged", n, "models from", *catalogPath)
	}

	if *list {
		for _, m := range catalog.Models() {
			fmt.Printf("%s/%s\tn=%d Ne=%.0f L=%.0f\t%s\n", m.Species, m.Name, m.SampleSize, m.Ne, m.SequenceLength, m.Description)
		}
		return
	}

	var compression cts.Compression
	switch strings.ToLower(*compressionName) {
	case "none":
		compression = cts.CompressionDisabled
	case "zlib":
		compression = cts.CompressionZLIB
	case "zstd", "zstandard":
		compression = cts.CompressionZStandard
	default:
		log.Fatalln("Unrecognized compression:", *compressionName)
	}

	entry := catalog.Model{Species: "custom", Name: "custom"}
	if *species != "" || *model != "" {
		var err error
		entry, err = catalog.Lookup(*species, *model)
		if err != nil {
			log.Fatalln(err)
		}
		log.Printf("Model %s/%s: %s\n", entry.Species, entry.Name, entry.Description)
	}
	if *samples > 0 {
		entry.SampleSize = *samples
	}
	if *ne > 0 {
		entry.Ne = *ne
	}
	if *length > 0 {
		entry.SequenceLength = *length
	}
	if *recomb >= 0 {
		entry.RecombinationRate = *recomb
	}
	if *mutation >= 0 {
		entry.MutationRate = *mutation
	}
	if *events != "" {
		entry.Events = *events
	}

	params, err := entry.SimulationParams()
	if err != nil {
		log.Fatalln(err)
	}

	if *seed == 0 {
		*seed = uint64(time.Now().UnixNano())
	}
	log.Printf("Simulating %d replicate(s): n=%d Ne=%.0f L=%.0f r=%g mu=%g seed=%d\n",
		*replicates, params.SampleSize, params.Ne, params.SequenceLength,
		params.RecombinationRate, params.MutationRate, *seed)

	var piValues, thetaValues, dValues, sValues []float64
	for i := 1; i <= *replicates; i++ {
		params.Seed = *seed + uint64(i) - 1

		ts, err := coalesce.Simulate(params)
		if err != nil {
			log.Fatalln(err)
		}

		matrix, err := ts.GenotypeMatrix()
		if err != nil {
			log.Fatalln(err)
		}
		n := ts.NumSamples()

		s, err := popstats.SegregatingSites(matrix, n)
		if err != nil {
			log.Fatalln(err)
		}
		pi, err := popstats.PairwiseDifferences(matrix, n)
		if err != nil {
			log.Fatalln(err)
		}
		theta, err := popstats.WattersonTheta(matrix, n, 0)
		if err != nil {
			log.Fatalln(err)
		}

		summary := fmt.Sprintf("Replicate %d) %d trees, S=%d, pi=%.4f, theta_W=%.4f", i, ts.NumTrees(), s, pi, theta)
		if d, err := popstats.TajimasD(matrix, n); err != nil {
			summary += ", Tajima's D undefined"
		} else {
			summary += fmt.Sprintf(", Tajima's D=%.4f", d)
			dValues = append(dValues, d)
		}
		log.Println(summary)

		piValues = append(piValues, pi)
		thetaValues = append(thetaValues, theta)
		sValues = append(sValues, float64(s))

		if *out == "" {
			continue
		}

		path := *out
		if *replicates > 1 {
			ext := filepath.Ext(path)
			path = fmt.Sprintf("%s_%03d%s", strings.TrimSuffix(path, ext), i, ext)
		}
		if err := cts.Create(path, ts, compression); err != nil {
			log.Fatalln(err)
		}
		log.Println("Wrote", path)

		if *index {
			if err := cts.CreateSiteIndex(path, path+".csi"); err != nil {
				log.Fatalln(err)
			}
			log.Println("Wrote", path+".csi")
		}
	}

	if *replicates > 1 {
		m, sd := stat.MeanStdDev(sValues, nil)
		log.Printf("Across replicates: S %.2f (SD %.2f)\n", m, sd)
		m, sd = stat.MeanStdDev(piValues, nil)
		log.Printf("Across replicates: pi %.4f (SD %.4f)\n", m, sd)
		m, sd = stat.MeanStdDev(thetaValues, nil)
		log.Printf("Across replicates: theta_W %.4f (SD %.4f)\n", m, sd)
		if len(dValues) > 0 {
			m, sd = stat.MeanStdDev(dValues, nil)
			log.Printf("Across replicates: Tajima's D %.4f (SD %.4f) over %d defined replicates\n", m, sd, len(dValues))
		}
	}
}
