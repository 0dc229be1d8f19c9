// Package simulate generates synthetic usage event streams against a
// running service, for load testing and demos.
package simulate

import (
	"crypto/rand"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000

	// A burst keeps the same app in the foreground for several events
	// so binge detection has something to find.
	minBurstLength = 1
	maxBurstLength = 15

	backgroundChance = 0.2
)

// appMix is the set of simulated apps, weighted toward the high-risk
// profiles so scored sessions exercise the full rule range.
var appMix = []string{ //nolint:gochecknoglobals // static simulation data
	"com.instagram.android",
	"com.zhiliaoapp.musically",
	"com.google.android.youtube",
	"com.snapchat.android",
	"com.king.candycrushsaga",
	"com.netflix.mediaclient",
	"com.whatsapp",
	"com.reddit.frontpage",
	"org.telegram.messenger",
	"com.google.android.apps.docs.editors.docs",
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// generator produces bursty per-app event streams.
type generator struct {
	currentApp string
	remaining  int
}

// next produces the next event in the stream, rotating to a new app
// when the current burst is exhausted.
func (g *generator) next(now time.Time) Event {
	if g.remaining <= 0 {
		g.currentApp = appMix[int(getRandomFloat()*float64(len(appMix)))%len(appMix)]
		g.remaining = minBurstLength + int(getRandomFloat()*float64(maxBurstLength-minBurstLength))
	}
	g.remaining--

	eventType := "FOREGROUND"
	if getRandomFloat() < backgroundChance {
		eventType = "BACKGROUND"
	}

	return Event{
		EventID:   uuid.New().String(),
		AppID:     g.currentApp,
		Type:      eventType,
		Timestamp: now.UnixMilli(),
	}
}
