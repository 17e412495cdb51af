// ABOUTME: Sample description for the info command
// ABOUTME: Loads files on a headless device and prints format, length and tags
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/backend"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/sample"
)

// Describe writes a human readable summary of d
func Describe(w io.Writer, d *sample.SampleData) {
	info := d.Info()
	fmt.Fprintf(w, "%s\n", d.Path())
	fmt.Fprintf(w, "  Format:   %s, %d Hz, %d channels\n", d.Format(), info.SampleRate, info.Channels)
	fmt.Fprintf(w, "  Frames:   %d (%d samples)\n", info.Frames, d.SampleCount())
	fmt.Fprintf(w, "  Duration: %.3fs\n", d.Duration().Seconds())

	t := d.Tags()
	if t.IsEmpty() {
		fmt.Fprintf(w, "  Tags:     (none)\n")
		return
	}
	fmt.Fprintf(w, "  Tags:\n")
	for key, value := range t.All() {
		fmt.Fprintf(w, "    %-12s %s\n", key+":", value)
	}
}

// Info loads each path on a memory device and describes it. Failed files
// are reported and the rest are still described.
func Info(w io.Writer, paths []string) error {
	dev := backend.NewMemory(backend.DefaultSampleRate, backend.DefaultChannels)
	defer dev.Close()

	bank := sample.NewBank(sample.NewManager(dev))

	var errs []error
	for _, path := range paths {
		ref, err := bank.Acquire(path)
		if err != nil {
			fmt.Fprintf(w, "%s\n  Error:    %v\n", path, err)
			errs = append(errs, err)
			continue
		}
		Describe(w, ref.Data())
		ref.Release()
	}
	return errors.Join(errs...)
}
