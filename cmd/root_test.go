package cmd

import (
	"reflect"
	"sort"
	"testing"

	"threadpack/internal/config"

	"github.com/spf13/viper"
)

// configKeys walks the mapstructure tags of config.Config.
func configKeys(t reflect.Type, prefix string) []string {
	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		key := prefix + f.Tag.Get("mapstructure")
		if f.Type.Kind() == reflect.Struct {
			out = append(out, configKeys(f.Type, key+".")...)
			continue
		}
		out = append(out, key)
	}
	return out
}

func TestEnvKeysCoverConfig(t *testing.T) {
	want := configKeys(reflect.TypeOf(config.Config{}), "")
	got := append([]string(nil), envKeys...)
	sort.Strings(want)
	sort.Strings(got)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("env keys out of sync with config:\nconfig: %v\nenv:    %v", want, got)
	}
}

func TestBindEnvOverrides(t *testing.T) {
	t.Setenv("THREADPACK_PACK_TOP_N", "25")
	t.Setenv("THREADPACK_PACK_CHARTS", "false")
	t.Setenv("THREADPACK_OPENAI_LANGUAGE", "German")
	t.Setenv("THREADPACK_EVIDENCE_K", "12")

	v := viper.New()
	bindEnv(v)
	var c config.Config
	if err := v.Unmarshal(&c); err != nil {
		t.Fatal(err)
	}
	c.FillDefaults()
	if c.Pack.TopN != 25 || c.Evidence.K != 12 {
		t.Fatalf("numeric overrides not applied: %+v %+v", c.Pack, c.Evidence)
	}
	if c.Pack.ChartsEnabled() {
		t.Fatalf("charts override not applied")
	}
	if c.OpenAI.Language != "German" {
		t.Fatalf("language = %q", c.OpenAI.Language)
	}
}
