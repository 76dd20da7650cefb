package utils

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"
)

var geoHTTPClient = &http.Client{Timeout: 3 * time.Second}

// GeoLocation is the best-effort location attached to a check-in,
// resolved from the client IP at admission time.
type GeoLocation struct {
	City    string   `json:"city"`
	Country string   `json:"country"`
	Lat     *float64 `json:"lat"`
	Lon     *float64 `json:"lon"`
}

type ipAPIResp struct {
	Status  string  `json:"status"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// in-memory TTL cache in front of Redis
type geoCacheEntry struct {
	value     GeoLocation
	expiresAt time.Time
}

var (
	geoCacheMu sync.RWMutex
	geoCache   = make(map[string]geoCacheEntry)
	geoTTL     = 24 * time.Hour
)

// LookupIPLocation resolves the city/country/coordinates for an IP
// with in-memory and Redis caching. Private and loopback addresses
// resolve to an empty location without error.
func LookupIPLocation(ctx context.Context, ip string) (GeoLocation, error) {
	if ip == "" || IsPrivateIP(ip) {
		return GeoLocation{}, nil
	}
	if v, ok := geoCacheGet(ip); ok {
		return v, nil
	}
	if v, ok := geoRedisGet(ctx, ip); ok {
		geoCacheSet(ip, v)
		return v, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://ip-api.com/json/"+ip, nil)
	if err != nil {
		return GeoLocation{}, err
	}
	resp, err := geoHTTPClient.Do(req)
	if err != nil {
		return GeoLocation{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return GeoLocation{}, errors.New("geo api non-200")
	}
	var body ipAPIResp
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return GeoLocation{}, err
	}
	if body.Status != "success" {
		return GeoLocation{}, errors.New("geo api lookup failed")
	}

	lat, lon := body.Lat, body.Lon
	loc := GeoLocation{City: body.City, Country: body.Country, Lat: &lat, Lon: &lon}
	geoCacheSet(ip, loc)
	geoRedisSet(ctx, ip, loc)
	return loc, nil
}

// IsPrivateIP returns true for RFC1918 and loopback ranges.
func IsPrivateIP(ipStr string) bool {
	ip := net.ParseIP(ipStr)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate()
}

func geoCacheGet(ip string) (GeoLocation, bool) {
	geoCacheMu.RLock()
	e, ok := geoCache[ip]
	geoCacheMu.RUnlock()
	if !ok {
		return GeoLocation{}, false
	}
	if time.Now().After(e.expiresAt) {
		geoCacheMu.Lock()
		delete(geoCache, ip)
		geoCacheMu.Unlock()
		return GeoLocation{}, false
	}
	return e.value, true
}

func geoCacheSet(ip string, loc GeoLocation) {
	geoCacheMu.Lock()
	geoCache[ip] = geoCacheEntry{value: loc, expiresAt: time.Now().Add(geoTTL)}
	geoCacheMu.Unlock()
}

func geoRedisKey(ip string) string { return "geo:ip:" + ip }

func geoRedisGet(ctx context.Context, ip string) (GeoLocation, bool) {
	cli := GetRedis()
	ctx2, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	raw, err := cli.Get(ctx2, geoRedisKey(ip)).Bytes()
	if err != nil {
		return GeoLocation{}, false
	}
	var loc GeoLocation
	if err := json.Unmarshal(raw, &loc); err != nil {
		return GeoLocation{}, false
	}
	return loc, true
}

func geoRedisSet(ctx context.Context, ip string, loc GeoLocation) {
	raw, err := json.Marshal(loc)
	if err != nil {
		return
	}
	cli := GetRedis()
	ctx2, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_ = cli.Set(ctx2, geoRedisKey(ip), raw, geoTTL).Err()
}
