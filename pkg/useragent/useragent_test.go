package useragent

import (
	stderrors "errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igapi/pkg/errors"
)

const redmi = "Instagram 9.2.0 Android (22/5.1.1; 480dpi; 1080x1920; Xiaomi; Redmi Note 3; kenzo; qcom; en_GB)"

func TestParse(t *testing.T) {
	d, err := Parse(redmi)
	require.NoError(t, err)

	assert.Equal(t, Device{
		AppVersion:     "9.2.0",
		AndroidVersion: 22,
		AndroidRelease: "5.1.1",
		DPI:            "480dpi",
		Resolution:     "1080x1920",
		Manufacturer:   "Xiaomi",
		Device:         "Redmi Note 3",
		Model:          "kenzo",
		Chipset:        "qcom",
		Locale:         "en_GB",
	}, d)
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		ua   string
	}{
		{"non numeric android version", "Instagram 9.2.0 Android (xx/5.1.1; 480dpi; 1080x1920; Xiaomi; Redmi Note 3; kenzo; qcom; en_GB)"},
		{"bad dpi", "Instagram 9.2.0 Android (22/5.1.1; high; 1080x1920; Xiaomi; Redmi Note 3; kenzo; qcom; en_GB)"},
		{"bad resolution", "Instagram 9.2.0 Android (22/5.1.1; 480dpi; 1080*1920; Xiaomi; Redmi Note 3; kenzo; qcom; en_GB)"},
		{"bad locale", "Instagram 9.2.0 Android (22/5.1.1; 480dpi; 1080x1920; Xiaomi; Redmi Note 3; kenzo; qcom; english)"},
		{"missing chipset", "Instagram 9.2.0 Android (22/5.1.1; 480dpi; 1080x1920; Xiaomi; Redmi Note 3; kenzo; en_GB)"},
		{"browser", "Mozilla/5.0 (X11; Linux x86_64)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.ua)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrValidation))
		})
	}
}

func TestGenerate(t *testing.T) {
	ua, err := Generate(Device{
		AppVersion:     "10.9.0",
		AndroidVersion: 18,
		AndroidRelease: "4.3",
		DPI:            "320dpi",
		Resolution:     "720x1280",
		Manufacturer:   "Samsung",
		Device:         "Galaxy Nexus",
		Model:          "maguro",
		Chipset:        "qcom",
		Locale:         "en_US",
	})
	require.NoError(t, err)
	assert.Equal(t, "Instagram 10.9.0 Android (18/4.3; 320dpi; 720x1280; Samsung; Galaxy Nexus; maguro; qcom; en_US)", ua)
}

func TestGenerateFillsDefaults(t *testing.T) {
	ua, err := Generate(Device{AppVersion: "10.9.0"})
	require.NoError(t, err)
	assert.Equal(t, "Instagram 10.9.0 Android (24/7.0; 640dpi; 1440x2560; samsung; SM-G930F; herolte; samsungexynos8890; en_US)", ua)
}

func TestGenerateValidatesFields(t *testing.T) {
	tests := []struct {
		name string
		d    Device
		want string
	}{
		{"dpi", Device{DPI: "320"}, "dpi"},
		{"resolution", Device{Resolution: "720-1280"}, "resolution"},
		{"locale", Device{Locale: "en-us"}, "locale"},
		{"release", Device{AndroidRelease: "four"}, "android release"},
		{"separator in model", Device{Model: "mag;uro"}, "model"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.d)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseGenerateInverse(t *testing.T) {
	d, err := Parse(redmi)
	require.NoError(t, err)

	ua, err := Generate(d)
	require.NoError(t, err)
	assert.Equal(t, redmi, ua)

	again, err := Parse(ua)
	require.NoError(t, err)
	assert.Equal(t, d, again)
}

func TestRandomProducesValidDevices(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		d := Random(r, "10.26.0", "en_US")
		require.NoError(t, d.Validate(), d.String())

		parsed, err := Parse(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
}
