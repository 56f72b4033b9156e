// internal/platform/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"infrascope/internal/testutil"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	testutil.AssertEqual(t, cfg.Target, "", "target vacío por defecto")
	testutil.AssertEqual(t, cfg.TimeoutS, 90, "timeout de discovery por defecto")
	testutil.AssertEqual(t, cfg.OutputDir, "infrascope_out", "output dir por defecto")
	testutil.AssertEqual(t, len(cfg.Sources), 4, "cuatro fuentes con defaults")

	for _, name := range []string{"crtsh", "certspotter", "otx", "hackertarget"} {
		src, ok := cfg.Sources[name]
		testutil.AssertTrue(t, ok, "la fuente "+name+" debe tener defaults")
		testutil.AssertTrue(t, src.Enabled, "la fuente "+name+" habilitada por defecto")
		testutil.AssertNotNil(t, src.Custom, "custom map inicializado para "+name)
	}

	testutil.AssertTrue(t, cfg.Sources["crtsh"].Priority > cfg.Sources["hackertarget"].Priority,
		"crtsh debe tener mayor prioridad que hackertarget")
	testutil.AssertEqual(t, cfg.Sources["hackertarget"].RateLimit, 2, "hackertarget rate limitado")
	testutil.AssertTrue(t, cfg.Resolver.RateLimit > 0, "el limiter DoH debe estar activo por defecto")
	testutil.AssertEqual(t, cfg.Resolver.RateWindowS, 1, "ventana del limiter DoH en segundos")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("INFRASCOPE_TARGET", "Example.COM")
	t.Setenv("INFRASCOPE_TIMEOUT", "120")
	t.Setenv("INFRASCOPE_OUTPUT_DIR", "/tmp/scan")
	t.Setenv("INFRASCOPE_QUIET", "yes")
	t.Setenv("INFRASCOPE_EXCLUDE", "dev.example.com, staging.example.com")
	t.Setenv("INFRASCOPE_SOURCES_CRTSH_ENABLED", "false")
	t.Setenv("INFRASCOPE_SOURCES_OTX_API_KEY", "secret-key")
	t.Setenv("INFRASCOPE_RESOLVER_PRIMARY", "https://dns.google/resolve,https://cloudflare-dns.com/dns-query")

	cfg := DefaultConfig()
	loadFromEnv(&cfg)
	normalize(&cfg)

	testutil.AssertEqual(t, cfg.Target, "example.com", "target normalizado desde env")
	testutil.AssertEqual(t, cfg.TimeoutS, 120, "timeout desde env")
	testutil.AssertEqual(t, cfg.OutputDir, "/tmp/scan", "output dir desde env")
	testutil.AssertTrue(t, cfg.Quiet, "INFRASCOPE_QUIET=yes debe activar quiet")
	testutil.AssertEqual(t, len(cfg.ExcludeDomains), 2, "dos exclusiones parseadas")
	testutil.AssertEqual(t, cfg.ExcludeDomains[0], "dev.example.com", "exclusión limpia")
	testutil.AssertFalse(t, cfg.Sources["crtsh"].Enabled, "crtsh deshabilitado por env")
	testutil.AssertEqual(t, cfg.Sources["otx"].Custom["api_key"], "secret-key", "api key de otx desde env")
	testutil.AssertEqual(t, len(cfg.Resolver.Primary), 2, "dos endpoints primarios")
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "infrascope.yaml")

	content := `
target: example.org
timeout: 45
output_dir: scans
exclude_domains:
  - internal.example.org
resolver:
  primary:
    - https://dns.quad9.net:5053/dns-query
outputs:
  table_disabled: true
resilience:
  max_retries: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := DefaultConfig()
	testutil.AssertNoError(t, loadFromFile(&cfg, path), "el fichero YAML debe cargar")
	normalize(&cfg)

	testutil.AssertEqual(t, cfg.Target, "example.org", "target desde fichero")
	testutil.AssertEqual(t, cfg.TimeoutS, 45, "timeout desde fichero")
	testutil.AssertEqual(t, cfg.OutputDir, "scans", "output dir desde fichero")
	testutil.AssertEqual(t, len(cfg.ExcludeDomains), 1, "exclusión desde fichero")
	testutil.AssertEqual(t, len(cfg.Resolver.Primary), 1, "resolver primario desde fichero")
	testutil.AssertTrue(t, cfg.Outputs.TableDisabled, "table_disabled desde fichero")
	testutil.AssertEqual(t, cfg.Resilience.MaxRetries, 5, "max retries desde fichero")
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := DefaultConfig()
	err := loadFromFile(&cfg, filepath.Join(t.TempDir(), "missing.yaml"))
	testutil.AssertError(t, err, "un fichero inexistente debe fallar")
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("target: [unclosed"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg := DefaultConfig()
	testutil.AssertError(t, loadFromFile(&cfg, path), "YAML inválido debe fallar")
}

func TestNormalize(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Target = "  API.Example.COM.  "
	cfg.TimeoutS = -5
	cfg.OutputDir = ""
	cfg.Resilience.BackoffBase = 0
	cfg.Resilience.BackoffMultiplier = 0.5
	cfg.ExcludeDomains = []string{" Dev.Example.COM. ", "", "cdn.example.com"}

	normalize(&cfg)

	testutil.AssertEqual(t, cfg.Target, "api.example.com", "target normalizado")
	testutil.AssertEqual(t, cfg.TimeoutS, 0, "timeout negativo se ajusta a cero")
	testutil.AssertEqual(t, cfg.OutputDir, "infrascope_out", "output dir vacío vuelve al default")
	testutil.AssertEqual(t, cfg.Resilience.BackoffBase, 1*time.Second, "backoff base saneado")
	testutil.AssertEqual(t, cfg.Resilience.BackoffMultiplier, 2.0, "multiplicador saneado")
	testutil.AssertEqual(t, len(cfg.ExcludeDomains), 2, "exclusiones vacías descartadas")
	testutil.AssertEqual(t, cfg.ExcludeDomains[0], "dev.example.com", "exclusión normalizada")
}

func TestDiscoveryTimeout(t *testing.T) {
	cfg := DefaultConfig()
	cfg.TimeoutS = 45
	testutil.AssertEqual(t, cfg.DiscoveryTimeout(), 45*time.Second, "timeout como duración")

	cfg.TimeoutS = 0
	testutil.AssertEqual(t, cfg.DiscoveryTimeout(), time.Duration(0), "cero significa sin timeout")
}

func TestParseBool(t *testing.T) {
	truthy := []string{"1", "t", "true", "True", "y", "yes", "YES", "on"}
	for _, v := range truthy {
		testutil.AssertTrue(t, parseBool(v), "valor truthy: "+v)
	}

	falsy := []string{"0", "false", "off", "no", "", "garbage"}
	for _, v := range falsy {
		testutil.AssertFalse(t, parseBool(v), "valor falsy: "+v)
	}
}

func TestParseInt(t *testing.T) {
	testutil.AssertEqual(t, parseInt("42", 0), 42, "entero válido")
	testutil.AssertEqual(t, parseInt("not-a-number", 7), 7, "inválido devuelve default")
	testutil.AssertEqual(t, parseInt(" 3 ", 0), 3, "espacios tolerados")
}

func TestSplitList(t *testing.T) {
	testutil.AssertEqual(t, len(splitList("a, b")), 2, "dos elementos con espacios")
	testutil.AssertEqual(t, len(splitList("  ,  ,")), 0, "sólo separadores produce lista vacía")
	testutil.AssertEqual(t, splitList("a,b")[1], "b", "orden preservado")
}

func TestPeekConfigFlag(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"infrascope", "--config", "/etc/infrascope.yaml", "-t", "example.com"}
	testutil.AssertEqual(t, peekConfigFlag(), "/etc/infrascope.yaml", "forma --config PATH")

	os.Args = []string{"infrascope", "--config=/opt/cfg.yaml"}
	testutil.AssertEqual(t, peekConfigFlag(), "/opt/cfg.yaml", "forma --config=PATH")

	os.Args = []string{"infrascope", "-t", "example.com"}
	testutil.AssertEqual(t, peekConfigFlag(), "", "sin flag retorna vacío")
}

func TestToJSON(t *testing.T) {
	cfg := DefaultConfig()
	out, err := cfg.ToJSON()
	testutil.AssertNoError(t, err, "la serialización no debe fallar")
	testutil.AssertContains(t, out, "infrascope_out", "el JSON incluye el output dir")
}
