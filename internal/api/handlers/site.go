package handlers

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SiteHandler serves the crawler files next to the page. URLs are built
// from the request so the service needs no public hostname setting.
type SiteHandler struct {
	lastMod string
}

func NewSiteHandler() *SiteHandler {
	return &SiteHandler{lastMod: time.Now().UTC().Format("2006-01-02")}
}

type sitemapURL struct {
	Loc        string  `xml:"loc"`
	LastMod    string  `xml:"lastmod"`
	ChangeFreq string  `xml:"changefreq"`
	Priority   float64 `xml:"priority"`
}

type sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Robots godoc
// @Summary robots.txt
// @Tags site
// @Produce plain
// @Success 200 {string} string
// @Router /robots.txt [get]
func (h *SiteHandler) Robots(c *gin.Context) {
	body := fmt.Sprintf("User-agent: *\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", baseURL(c.Request))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

// Sitemap godoc
// @Summary sitemap.xml
// @Tags site
// @Produce xml
// @Success 200 {string} string
// @Router /sitemap.xml [get]
func (h *SiteHandler) Sitemap(c *gin.Context) {
	doc := sitemap{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{{
			Loc:        baseURL(c.Request) + "/",
			LastMod:    h.lastMod,
			ChangeFreq: "weekly",
			Priority:   1.0,
		}},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", append([]byte(xml.Header), out...))
}

// baseURL honours a proxy's X-Forwarded-Proto.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.ToLower(strings.TrimSpace(strings.Split(proto, ",")[0]))
	}
	return scheme + "://" + r.Host
}
