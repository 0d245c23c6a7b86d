package debug

import (
	"os"
	"strconv"
)

type debug struct {
	Codec   bool
	Merge   bool
	Adapter bool
	Format  bool
}

var d *debug

func init() {
	d = &debug{}
	d.Codec = boolEnv("ONECONF_DEBUG_CODEC")
	d.Merge = boolEnv("ONECONF_DEBUG_MERGE")
	d.Adapter = boolEnv("ONECONF_DEBUG_ADAPTER")
	d.Format = boolEnv("ONECONF_DEBUG_FORMAT")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Codec() bool {
	return d.Codec
}
func Merge() bool {
	return d.Merge
}
func Adapter() bool {
	return d.Adapter
}
func Format() bool {
	return d.Format
}
