package probe

import "encoding/json"

// probeDoc mirrors the subset of ffprobe's JSON schema the
// preflight check reads; ffmpeg.Probe returns ffprobe's raw `-show_format
// -show_streams` JSON as a string.
type probeDoc struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		FormatName string `json:"format_name"`
	} `json:"format"`
}

func parseProbeJSON(data string) (Result, error) {
	var doc probeDoc
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return Result{}, err
	}

	return Result{
		HasStream:  len(doc.Streams) > 0,
		FormatName: doc.Format.FormatName,
	}, nil
}
