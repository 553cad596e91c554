package handlers

import (
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestSitemapUsesForwardedScheme(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	site := NewSiteHandler()
	engine.GET("/sitemap.xml", site.Sitemap)
	engine.GET("/robots.txt", site.Robots)

	req := httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil)
	req.Host = "grab.example.org"
	req.Header.Set("X-Forwarded-Proto", "https, http")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	var doc sitemap
	if err := xml.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("sitemap is not XML: %v\n%s", err, rec.Body.String())
	}
	if len(doc.URLs) != 1 || doc.URLs[0].Loc != "https://grab.example.org/" {
		t.Errorf("urls = %+v", doc.URLs)
	}
	if doc.URLs[0].LastMod != site.lastMod {
		t.Errorf("lastmod = %q, want %q", doc.URLs[0].LastMod, site.lastMod)
	}

	req = httptest.NewRequest(http.MethodGet, "/robots.txt", nil)
	req.Host = "grab.example.org"
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	body := rec.Body.String()
	if !strings.Contains(body, "Disallow: /api/") || !strings.Contains(body, "Sitemap: http://grab.example.org/sitemap.xml") {
		t.Errorf("robots.txt = %q", body)
	}
}
