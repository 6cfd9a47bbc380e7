// coalstats computes population-genetic summary statistics from a .cts file
// (local or gs://): segregating sites, nucleotide diversity, Watterson's
// theta, Tajima's D, and the site frequency spectrum, with an optional ASCII
// histogram and CSV export.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/carbocation/pfx"
	"github.com/gocarina/gocsv"
	"github.com/montanaflynn/stats"

	"github.com/genostats/coalesce/cts"
	"github.com/genostats/coalesce/popstats"
)

type spectrumRow struct {
	DerivedAlleles int `csv:"derived_alleles"`
	Sites          int `csv:"sites"`
}

func main() {
	path := flag.String("cts", "", "Filename of the .cts file to process (local path or gs:// URL)")
	csiPath := flag.String("csi", "", "Optional .csi site index whose metadata and row count are reported")
	subset := flag.String("samples", "", "Comma-separated sample column indices; reports segregating sites within the subset")
	sfsOut := flag.String("sfs", "", "Write the site frequency spectrum to this CSV file")
	buckets := flag.Int("buckets", 10, "Bucket count for the derived-allele-count histogram")
	flag.Parse()

	if *path == "" {
		flag.PrintDefaults()
		log.Fatalln("No cts file given")
	}

	if strings.HasPrefix(*path, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		*path = filepath.Join(usr.HomeDir, (*path)[2:])
	}

	log.Println("Opening cts:", *path)
	c, err := cts.Open(*path)
	if err != nil {
		log.Fatalln(err)
	}
	defer c.Close()

	log.Printf("%d sites, %d samples, sequence length %.0f, %s compression\n",
		c.NSites, c.NSamples, c.SequenceLength, cts.Compression(c.FlagCompression))

	if *csiPath != "" {
		csi, err := cts.OpenCSI(*csiPath)
		if err != nil {
			log.Fatalln(err)
		}
		csi.Metadata.FirstThousandBytes = nil
		log.Printf("CSI Metadata: %+v\n", csi.Metadata)

		var total int
		if err := csi.DB.Get(&total, "SELECT COUNT(*) FROM Site"); err != nil {
			log.Fatalln(pfx.Err(err))
		}
		log.Println("Site index covers", total, "sites")
		csi.Close()
	}

	if samples, err := cts.ReadSamples(c); err != nil {
		log.Println(err)
	} else if len(samples) > 0 {
		log.Printf("Samples %s .. %s\n", samples[0].SampleID, samples[len(samples)-1].SampleID)
	}

	n := int(c.NSamples)
	matrix := make([][]uint8, 0, c.NSites)
	counts := make([]float64, 0, c.NSites)

	sr := c.NewSiteReader()
	for {
		rec := sr.Read()
		if rec == nil {
			break
		}
		matrix = append(matrix, rec.Genotypes)
		counts = append(counts, float64(rec.DerivedCount))
	}
	if sr.Error() != nil {
		log.Fatalln(sr.Error())
	}
	log.Println("Read", len(matrix), "site records")

	s, err := popstats.SegregatingSites(matrix, n)
	if err != nil {
		log.Fatalln(err)
	}
	pi, err := popstats.PairwiseDifferences(matrix, n)
	if err != nil {
		log.Fatalln(err)
	}
	piBP, err := popstats.NucleotideDiversity(matrix, n, c.SequenceLength)
	if err != nil {
		log.Fatalln(err)
	}
	thetaBP, err := popstats.WattersonTheta(matrix, n, c.SequenceLength)
	if err != nil {
		log.Fatalln(err)
	}

	fmt.Printf("Segregating sites: %d\n", s)
	fmt.Printf("Pairwise differences (pi): %.4f total, %.3g per bp\n", pi, piBP)
	fmt.Printf("Watterson's theta: %.3g per bp\n", thetaBP)

	if d, err := popstats.TajimasD(matrix, n); err != nil {
		fmt.Println("Tajima's D: undefined for this sample")
	} else {
		fmt.Printf("Tajima's D: %.4f\n", d)
	}

	if *subset != "" {
		var cols []int
		for _, field := range strings.Split(*subset, ",") {
			col, err := strconv.Atoi(strings.TrimSpace(field))
			if err != nil {
				log.Fatalln(pfx.Err(err))
			}
			cols = append(cols, col)
		}
		sub, err := popstats.SegregatingSitesSubset(matrix, n, cols)
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Printf("Segregating sites within %d-sample subset: %d\n", len(cols), sub)
	}

	data := stats.LoadRawData(counts)
	if data.Len() > 0 {
		mean, err := data.Mean()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		median, err := data.Median()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		sd, err := data.StandardDeviation()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		fmt.Printf("Derived allele count: mean %.2f, median %.1f, SD %.2f\n", mean, median, sd)

		hist := histogram.Hist(*buckets, counts)
		if err := histogram.Fprint(os.Stdout, hist, histogram.Linear(40)); err != nil {
			log.Fatalln(pfx.Err(err))
		}
	}

	spectrum, err := popstats.SiteFrequencySpectrum(matrix, n)
	if err != nil {
		log.Fatalln(err)
	}
	for k, sites := range spectrum {
		fmt.Printf("SFS[%d] = %d\n", k+1, sites)
	}

	if *sfsOut != "" {
		rows := make([]spectrumRow, 0, len(spectrum))
		for k, sites := range spectrum {
			rows = append(rows, spectrumRow{DerivedAlleles: k + 1, Sites: sites})
		}

		f, err := os.Create(*sfsOut)
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		if err := gocsv.Marshal(&rows, f); err != nil {
			f.Close()
			log.Fatalln(pfx.Err(err))
		}
		if err := f.Close(); err != nil {
			log.Fatalln(pfx.Err(err))
		}
		log.Println("Wrote spectrum to", *sfsOut)
	}
}
