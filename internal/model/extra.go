package model

import (
	"encoding/json"
	"reflect"
	"strings"
)

var (
	cityInfoFields      = jsonFieldNames(reflect.TypeOf(CityInfo{}))
	sysFields           = jsonFieldNames(reflect.TypeOf(Sys{}))
	weatherReportFields = jsonFieldNames(reflect.TypeOf(WeatherReport{}))
)

// jsonFieldNames collects the JSON keys a struct decodes on its own
func jsonFieldNames(t reflect.Type) map[string]struct{} {
	names := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		names[name] = struct{}{}
	}
	return names
}

func extraFields(data []byte, known map[string]struct{}) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for name := range known {
		delete(all, name)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// mergeExtra encodes v and adds the extra keys that v does not already define
func mergeExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for k, raw := range extra {
		if _, ok := merged[k]; !ok {
			merged[k] = raw
		}
	}
	return json.Marshal(merged)
}
