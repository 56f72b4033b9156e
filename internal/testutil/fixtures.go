// internal/testutil/fixtures.go
package testutil

// Fixture data para tests (valores primitivos solamente, sin dependencias de domain)

// FixtureDomains contiene dominios de prueba válidos.
var FixtureDomains = []string{
	"example.com",
	"api.example.com",
	"www.example.com",
	"deep.staging.example.com",
}

// FixtureInvalidHostnames contiene candidatos que la cola de discovery debe rechazar.
var FixtureInvalidHostnames = []string{
	"",
	"   ",
	"api.example.com\nwww.example.com",
	"not a hostname",
	"-bad.example.com",
}

// FixtureIPs contiene IPs de prueba.
var FixtureIPs = []string{
	"192.0.2.10",
	"198.51.100.7",
	"203.0.113.42",
	"1.2.3.4",
}

// FixtureCNAMETargets contiene objetivos CNAME de proveedores conocidos.
var FixtureCNAMETargets = []string{
	"d111111abcdef8.cloudfront.net",
	"example.github.io",
	"myapp.herokuapp.com",
	"example.netlify.app",
	"lb-1234.us-east-1.elb.amazonaws.com",
}
