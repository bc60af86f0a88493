package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
)

type ExportData struct {
	Run     RunMetadata    `json:"run"`
	Samples []ExportSample `json:"samples"`
}

type ExportSample struct {
	Time       float64      `json:"time"`
	Reference  float64      `json:"reference"`
	Observable config.Float `json:"observable"`
	Requested  float64      `json:"requested"`
	Actual     float64      `json:"actual"`
	Mode       string       `json:"mode"`
}

// ExportJSON writes a run and its samples as one indented document.
func ExportJSON(w io.Writer, meta *RunMetadata, samples []dynamo.Sample) error {
	data := ExportData{
		Run:     *meta,
		Samples: make([]ExportSample, len(samples)),
	}
	for i, smp := range samples {
		data.Samples[i] = ExportSample{
			Time:       smp.Time,
			Reference:  smp.Reference,
			Observable: config.Float(smp.Observable),
			Requested:  smp.Requested,
			Actual:     smp.Actual,
			Mode:       smp.Mode.String(),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportMetadata writes only the run metadata.
func ExportMetadata(w io.Writer, meta *RunMetadata) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(meta)
}
