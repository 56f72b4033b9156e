// internal/asn/providers.go
package asn

import (
	"encoding/json"
	"fmt"
	"strings"

	"infrascope/internal/core/domain"
	"infrascope/internal/platform/errors"
)

// Provider es un servicio externo de geolocalización/ASN. Cada provider
// construye su URL y parsea su JSON propio a un ASNInfo normalizado.
type Provider struct {
	Name  string
	URL   func(ip string) string
	Parse func(body []byte) (*domain.ASNInfo, error)
}

// DefaultProviders retorna la lista ordenada de providers. El orden importa:
// se acepta la primera respuesta con organización utilizable.
func DefaultProviders() []Provider {
	return []Provider{
		{
			Name:  "ip-api",
			URL:   func(ip string) string { return fmt.Sprintf("http://ip-api.com/json/%s", ip) },
			Parse: parseIPAPI,
		},
		{
			Name:  "ipwhois",
			URL:   func(ip string) string { return fmt.Sprintf("https://ipwho.is/%s", ip) },
			Parse: parseIPWhois,
		},
		{
			Name:  "ipapi-co",
			URL:   func(ip string) string { return fmt.Sprintf("https://ipapi.co/%s/json/", ip) },
			Parse: parseIPAPICo,
		},
	}
}

func parseIPAPI(body []byte) (*domain.ASNInfo, error) {
	var resp struct {
		Status      string  `json:"status"`
		Country     string  `json:"countryCode"`
		CountryName string  `json:"country"`
		Region      string  `json:"regionName"`
		City        string  `json:"city"`
		Lat         float64 `json:"lat"`
		Lon         float64 `json:"lon"`
		ISP         string  `json:"isp"`
		AS          string  `json:"as"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "success" {
		return nil, errors.ErrInvalidResponse
	}
	return &domain.ASNInfo{
		ASN:         firstField(resp.AS),
		ISP:         resp.ISP,
		Country:     resp.Country,
		CountryName: resp.CountryName,
		Region:      resp.Region,
		City:        resp.City,
		Lat:         resp.Lat,
		Lon:         resp.Lon,
	}, nil
}

func parseIPWhois(body []byte) (*domain.ASNInfo, error) {
	var resp struct {
		Success     bool    `json:"success"`
		Country     string  `json:"country_code"`
		CountryName string  `json:"country"`
		Region      string  `json:"region"`
		City        string  `json:"city"`
		Lat         float64 `json:"latitude"`
		Lon         float64 `json:"longitude"`
		Connection  struct {
			ASN int    `json:"asn"`
			Org string `json:"org"`
			ISP string `json:"isp"`
		} `json:"connection"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, errors.ErrInvalidResponse
	}
	org := resp.Connection.ISP
	if org == "" {
		org = resp.Connection.Org
	}
	info := &domain.ASNInfo{
		ISP:         org,
		Country:     resp.Country,
		CountryName: resp.CountryName,
		Region:      resp.Region,
		City:        resp.City,
		Lat:         resp.Lat,
		Lon:         resp.Lon,
	}
	if resp.Connection.ASN != 0 {
		info.ASN = fmt.Sprintf("AS%d", resp.Connection.ASN)
	}
	return info, nil
}

func parseIPAPICo(body []byte) (*domain.ASNInfo, error) {
	var resp struct {
		Error       bool    `json:"error"`
		Country     string  `json:"country_code"`
		CountryName string  `json:"country_name"`
		Region      string  `json:"region"`
		City        string  `json:"city"`
		Lat         float64 `json:"latitude"`
		Lon         float64 `json:"longitude"`
		ASN         string  `json:"asn"`
		Org         string  `json:"org"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	if resp.Error {
		return nil, errors.ErrInvalidResponse
	}
	return &domain.ASNInfo{
		ASN:         resp.ASN,
		ISP:         resp.Org,
		Country:     resp.Country,
		CountryName: resp.CountryName,
		Region:      resp.Region,
		City:        resp.City,
		Lat:         resp.Lat,
		Lon:         resp.Lon,
	}, nil
}

// firstField extrae el primer token de un campo "AS15169 Google LLC".
func firstField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
