package persistence

import (
	"net/http"
	"net/url"
	"time"
)

// Cookie keys shared with the page script, which mirrors them into
// localStorage.
const (
	KeyWon    = "rouletteWon"
	KeyPrize  = "roulettePrize"
	KeyDate   = "rouletteDate"
	KeyCity   = "localCidade"
	KeyRegion = "localEstado"
)

const (
	WinTTL      = 30 * 24 * time.Hour
	LocationTTL = 365 * 24 * time.Hour
)

// Jar reads and writes the visitor-side record of a win and of the chosen
// delivery location. Cookies are readable by the page script.
type Jar struct {
	secure bool
}

func NewJar(secure bool) *Jar {
	return &Jar{secure: secure}
}

// RecordWin marks the visitor as having played and stores the prize.
func (j *Jar) RecordWin(w http.ResponseWriter, prize string, now time.Time) {
	j.set(w, KeyWon, "true", WinTTL)
	j.set(w, KeyPrize, prize, WinTTL)
	j.set(w, KeyDate, now.UTC().Format(time.RFC3339), WinTTL)
}

// HasAlreadyPlayed reports whether the win cookie is present.
func (j *Jar) HasAlreadyPlayed(r *http.Request) bool {
	v, ok := j.get(r, KeyWon)
	return ok && v == "true"
}

// LastPrize returns the stored prize and when it was won.
func (j *Jar) LastPrize(r *http.Request) (string, time.Time, bool) {
	prize, ok := j.get(r, KeyPrize)
	if !ok || prize == "" {
		return "", time.Time{}, false
	}
	var at time.Time
	if raw, ok := j.get(r, KeyDate); ok {
		at, _ = time.Parse(time.RFC3339, raw)
	}
	return prize, at, true
}

// SetLocation stores the confirmed city and region.
func (j *Jar) SetLocation(w http.ResponseWriter, city, region string) {
	j.set(w, KeyCity, city, LocationTTL)
	j.set(w, KeyRegion, region, LocationTTL)
}

// Location returns the stored city and region. Both must be present.
func (j *Jar) Location(r *http.Request) (string, string, bool) {
	city, okCity := j.get(r, KeyCity)
	region, okRegion := j.get(r, KeyRegion)
	if !okCity || !okRegion || city == "" || region == "" {
		return "", "", false
	}
	return city, region, true
}

func (j *Jar) set(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    url.PathEscape(value),
		Path:     "/",
		Secure:   j.secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
}

func (j *Jar) get(r *http.Request, name string) (string, bool) {
	c, err := r.Cookie(name)
	if err != nil {
		return "", false
	}
	v, err := url.PathUnescape(c.Value)
	if err != nil {
		return c.Value, true
	}
	return v, true
}
