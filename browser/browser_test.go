package browser

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/registration-contract-tests/config"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	for input, expected := range map[string]string{
		"Formulario de Registro - Casos Principales/Debería registrar un usuario válido": "formulario-de-registro-casos-principales-deberia-registrar-un-usuario-valido",
		"Pruebas de Accesibilidad/Navegación con teclado":                                "pruebas-de-accesibilidad-navegacion-con-teclado",
		"  leading and trailing  ":                                                       "leading-and-trailing",
		"Ñandú":                                                                          "nandu",
		"***":                                                                            "test",
	} {
		assert.Equal(t, expected, slug(input), input)
	}
}

func TestLongSlugsAreShortenedWithoutCollisions(t *testing.T) {
	base := strings.Repeat("Formulario de Registro ", 10)
	a, b := slug(base+"uno"), slug(base+"dos")
	assert.Len(t, a, maxSlugLength)
	assert.Len(t, b, maxSlugLength)
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, slug(base+"uno"))
}

func TestArtifactDir(t *testing.T) {
	assert.Equal(t, filepath.Join("test-results", "grupo-caso"), ArtifactDir("test-results", "Grupo/Caso", 0))
	assert.Equal(t, filepath.Join("test-results", "grupo-caso-retry1"), ArtifactDir("test-results", "Grupo/Caso", 1))
	assert.Equal(t, filepath.Join("out", "grupo-caso-retry2"), ArtifactDir("out", "Grupo/Caso", 2))
}

func TestLaunchOptions(t *testing.T) {
	cfg := config.Default(func(string) string { return "" })
	opts := launchOptions(cfg)
	require.NotNil(t, opts.Headless)
	assert.True(t, *opts.Headless)
	assert.Nil(t, opts.SlowMo)

	cfg.Headless = false
	cfg.SlowMo = 250 * time.Millisecond
	opts = launchOptions(cfg)
	assert.False(t, *opts.Headless)
	require.NotNil(t, opts.SlowMo)
	assert.Equal(t, float64(250), *opts.SlowMo)
}

func TestContextOptions(t *testing.T) {
	cfg := config.Default(func(string) string { return "" })
	device := &playwright.DeviceDescriptor{
		UserAgent:         "Mozilla/5.0 Test",
		Viewport:          &playwright.Size{Width: 1280, Height: 720},
		DeviceScaleFactor: 1,
	}

	opts := contextOptions(cfg, device, "out/dir", 0)
	assert.Equal(t, "http://localhost:3000", *opts.BaseURL)
	assert.Equal(t, "Mozilla/5.0 Test", *opts.UserAgent)
	assert.Equal(t, device.Viewport, opts.Viewport)
	assert.False(t, *opts.IsMobile)
	require.NotNil(t, opts.RecordVideo, "retain-on-failure records every attempt")
	assert.Equal(t, "out/dir", opts.RecordVideo.Dir)

	cfg.Video = config.ArtifactOnFirstRetry
	assert.Nil(t, contextOptions(cfg, device, "out/dir", 0).RecordVideo)
	assert.NotNil(t, contextOptions(cfg, device, "out/dir", 1).RecordVideo)

	cfg.Video = config.ArtifactOff
	assert.Nil(t, contextOptions(cfg, nil, "out/dir", 1).RecordVideo)
	assert.Nil(t, contextOptions(cfg, nil, "out/dir", 1).UserAgent)
}
