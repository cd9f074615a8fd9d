package harness

import (
	"fmt"
	"io/ioutil"
	"time"

	"github.com/golang/protobuf/proto"
	structpb "github.com/golang/protobuf/ptypes/struct"
)

// Report is the persisted outcome of a benchmark run.
type Report struct {
	Version string
	Size    int
	Workers int
	Started time.Time
	Results []Result
}

func number(v float64) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_NumberValue{NumberValue: v}}
}

func text(s string) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_StringValue{StringValue: s}}
}

func boolean(b bool) *structpb.Value {
	return &structpb.Value{Kind: &structpb.Value_BoolValue{BoolValue: b}}
}

// Proto converts the report to a generic protobuf message.
func (r *Report) Proto() *structpb.Struct {
	results := make([]*structpb.Value, 0, len(r.Results))
	for _, res := range r.Results {
		results = append(results, &structpb.Value{Kind: &structpb.Value_StructValue{
			StructValue: &structpb.Struct{Fields: map[string]*structpb.Value{
				"backend":    text(res.Backend),
				"elapsed_ns": number(float64(res.Elapsed.Nanoseconds())),
				"verified":   boolean(res.Verified),
				"max_error":  number(res.MaxError),
			}},
		}})
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"version": text(r.Version),
		"size":    number(float64(r.Size)),
		"workers": number(float64(r.Workers)),
		"started": text(r.Started.UTC().Format(time.RFC3339Nano)),
		"results": {Kind: &structpb.Value_ListValue{ListValue: &structpb.ListValue{Values: results}}},
	}}
}

// ReportFromProto is the inverse of Report.Proto.
func ReportFromProto(m *structpb.Struct) (*Report, error) {
	f := m.GetFields()
	if f == nil {
		return nil, fmt.Errorf("empty report")
	}

	started, err := time.Parse(time.RFC3339Nano, f["started"].GetStringValue())
	if err != nil {
		return nil, fmt.Errorf("invalid report start time: %v", err)
	}

	r := &Report{
		Version: f["version"].GetStringValue(),
		Size:    int(f["size"].GetNumberValue()),
		Workers: int(f["workers"].GetNumberValue()),
		Started: started,
	}

	for i, v := range f["results"].GetListValue().GetValues() {
		rf := v.GetStructValue().GetFields()
		if rf == nil {
			return nil, fmt.Errorf("result %d is not an object", i)
		}
		r.Results = append(r.Results, Result{
			Backend:  rf["backend"].GetStringValue(),
			Elapsed:  time.Duration(int64(rf["elapsed_ns"].GetNumberValue())),
			Verified: rf["verified"].GetBoolValue(),
			MaxError: rf["max_error"].GetNumberValue(),
		})
	}

	return r, nil
}

// SaveReport serializes the report to fileName.
func SaveReport(fileName string, r *Report) error {
	data, err := proto.Marshal(r.Proto())
	if err != nil {
		return fmt.Errorf("Error while serializing report to %s: %s", fileName, err)
	} else if err = ioutil.WriteFile(fileName, data, 0644); err != nil {
		return fmt.Errorf("Error while saving report to %s: %s", fileName, err)
	}
	return nil
}

// LoadReport reads a report saved with SaveReport.
func LoadReport(fileName string) (*Report, error) {
	data, err := ioutil.ReadFile(fileName)
	if err != nil {
		return nil, fmt.Errorf("Error while reading %s: %s", fileName, err)
	}

	m := &structpb.Struct{}
	if err = proto.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("Error while deserializing %s: %s", fileName, err)
	}
	return ReportFromProto(m)
}
