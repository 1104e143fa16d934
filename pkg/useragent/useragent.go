// Package useragent parses and builds the Android app user agent the private API expects:
//
//	Instagram <app> Android (<sdk>/<release>; <dpi>; <resolution>; <manufacturer>; <device>; <model>; <chipset>; <locale>)
package useragent

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"igapi/pkg/errors"
)

// Device is the structured form of a user agent
type Device struct {
	AppVersion     string `json:"app_version" yaml:"app_version"`
	AndroidVersion int    `json:"android_version" yaml:"android_version"`
	AndroidRelease string `json:"android_release" yaml:"android_release"`
	DPI            string `json:"dpi" yaml:"dpi"`
	Resolution     string `json:"resolution" yaml:"resolution"`
	Manufacturer   string `json:"manufacturer" yaml:"manufacturer"`
	Device         string `json:"device" yaml:"device"`
	Model          string `json:"model" yaml:"model"`
	Chipset        string `json:"chipset" yaml:"chipset"`
	Locale         string `json:"locale" yaml:"locale"`
}

// Default is the device used when nothing else is configured
var Default = Device{
	AppVersion:     "10.26.0",
	AndroidVersion: 24,
	AndroidRelease: "7.0",
	DPI:            "640dpi",
	Resolution:     "1440x2560",
	Manufacturer:   "samsung",
	Device:         "SM-G930F",
	Model:          "herolte",
	Chipset:        "samsungexynos8890",
	Locale:         "en_US",
}

const format = "Instagram %s Android (%d/%s; %s; %s; %s; %s; %s; %s; %s)"

var (
	uaPattern = regexp.MustCompile(`^Instagram\s(?P<app_version>[^\s]+)\sAndroid\s\((?P<android_version>[0-9]+)/(?P<android_release>[0-9.]+);\s(?P<dpi>\d+dpi);\s(?P<resolution>\d+x\d+);\s(?P<manufacturer>[^;]+);\s(?P<device>[^;]+);\s(?P<model>[^;]+);\s(?P<chipset>[^;]+);\s(?P<locale>[a-z]+_[A-Z]+)\)$`)

	appVersionPattern = regexp.MustCompile(`^[^\s]+$`)
	releasePattern    = regexp.MustCompile(`^[0-9.]+$`)
	dpiPattern        = regexp.MustCompile(`^\d+dpi$`)
	resolutionPattern = regexp.MustCompile(`^\d+x\d+$`)
	localePattern     = regexp.MustCompile(`^[a-z]+_[A-Z]+$`)
)

// String formats d without validating it
func (d Device) String() string {
	return fmt.Sprintf(format,
		d.AppVersion, d.AndroidVersion, d.AndroidRelease, d.DPI, d.Resolution,
		d.Manufacturer, d.Device, d.Model, d.Chipset, d.Locale)
}

// Validate checks every field against the shape the server accepts
func (d Device) Validate() error {
	var problems []string

	if !appVersionPattern.MatchString(d.AppVersion) {
		problems = append(problems, fmt.Sprintf("app version %q", d.AppVersion))
	}
	if d.AndroidVersion <= 0 {
		problems = append(problems, fmt.Sprintf("android version %d", d.AndroidVersion))
	}
	if !releasePattern.MatchString(d.AndroidRelease) {
		problems = append(problems, fmt.Sprintf("android release %q", d.AndroidRelease))
	}
	if !dpiPattern.MatchString(d.DPI) {
		problems = append(problems, fmt.Sprintf("dpi %q", d.DPI))
	}
	if !resolutionPattern.MatchString(d.Resolution) {
		problems = append(problems, fmt.Sprintf("resolution %q", d.Resolution))
	}
	for name, v := range map[string]string{
		"manufacturer": d.Manufacturer,
		"device":       d.Device,
		"model":        d.Model,
		"chipset":      d.Chipset,
	} {
		if strings.TrimSpace(v) == "" || strings.ContainsAny(v, ";()") {
			problems = append(problems, fmt.Sprintf("%s %q", name, v))
		}
	}
	if !localePattern.MatchString(d.Locale) {
		problems = append(problems, fmt.Sprintf("locale %q", d.Locale))
	}

	if len(problems) > 0 {
		return errors.NewValidation("invalid user agent field(s): %s", strings.Join(problems, ", "))
	}
	return nil
}

// Generate fills empty fields of d from Default, validates and formats it
func Generate(d Device) (string, error) {
	d = d.withDefaults()
	if err := d.Validate(); err != nil {
		return "", err
	}
	return d.String(), nil
}

// Parse extracts the device fields from a user agent string
func Parse(ua string) (Device, error) {
	m := uaPattern.FindStringSubmatch(strings.TrimSpace(ua))
	if m == nil {
		return Device{}, errors.NewValidation("malformed user agent: %q", ua)
	}

	field := func(name string) string {
		return m[uaPattern.SubexpIndex(name)]
	}

	version, err := strconv.Atoi(field("android_version"))
	if err != nil {
		return Device{}, errors.NewValidation("malformed android version in user agent: %q", ua)
	}

	return Device{
		AppVersion:     field("app_version"),
		AndroidVersion: version,
		AndroidRelease: field("android_release"),
		DPI:            field("dpi"),
		Resolution:     field("resolution"),
		Manufacturer:   field("manufacturer"),
		Device:         field("device"),
		Model:          field("model"),
		Chipset:        field("chipset"),
		Locale:         field("locale"),
	}, nil
}

func (d Device) withDefaults() Device {
	if d.AppVersion == "" {
		d.AppVersion = Default.AppVersion
	}
	if d.AndroidVersion == 0 {
		d.AndroidVersion = Default.AndroidVersion
	}
	if d.AndroidRelease == "" {
		d.AndroidRelease = Default.AndroidRelease
	}
	if d.DPI == "" {
		d.DPI = Default.DPI
	}
	if d.Resolution == "" {
		d.Resolution = Default.Resolution
	}
	if d.Manufacturer == "" {
		d.Manufacturer = Default.Manufacturer
	}
	if d.Device == "" {
		d.Device = Default.Device
	}
	if d.Model == "" {
		d.Model = Default.Model
	}
	if d.Chipset == "" {
		d.Chipset = Default.Chipset
	}
	if d.Locale == "" {
		d.Locale = Default.Locale
	}
	return d
}

// profiles is a small database of real handsets used by Random
var profiles = []Device{
	{AndroidVersion: 26, AndroidRelease: "8.0.0", DPI: "480dpi", Resolution: "1080x1920", Manufacturer: "OnePlus", Device: "ONEPLUS A3010", Model: "OnePlus3T", Chipset: "qcom"},
	{AndroidVersion: 29, AndroidRelease: "10", DPI: "560dpi", Resolution: "1440x3040", Manufacturer: "samsung", Device: "SM-G973F", Model: "beyond1", Chipset: "exynos9820"},
	{AndroidVersion: 31, AndroidRelease: "12", DPI: "420dpi", Resolution: "1080x2400", Manufacturer: "Google", Device: "Pixel 6", Model: "oriole", Chipset: "arm64-v8a"},
	{AndroidVersion: 30, AndroidRelease: "11", DPI: "440dpi", Resolution: "1080x2340", Manufacturer: "Xiaomi", Device: "Mi 10 Pro", Model: "cmi", Chipset: "qcom"},
	{AndroidVersion: 30, AndroidRelease: "11", DPI: "480dpi", Resolution: "1200x2640", Manufacturer: "HUAWEI", Device: "ELS-NX9", Model: "HWELS", Chipset: "kirin990"},
	{AndroidVersion: 31, AndroidRelease: "12", DPI: "480dpi", Resolution: "1080x2400", Manufacturer: "samsung", Device: "SM-G991B", Model: "o1s", Chipset: "exynos2100"},
}

// Random picks a device from the built-in profiles, keeping appVersion and locale
func Random(r *rand.Rand, appVersion, locale string) Device {
	d := profiles[r.Intn(len(profiles))]
	d.AppVersion = appVersion
	d.Locale = locale
	return d.withDefaults()
}
