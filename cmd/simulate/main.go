// Command simulate plays the part of the sensor board: it generates movement
// and smoke readings and posts them to a running gateway.
package main

import (
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"alarm_gateway/models"

	"github.com/go-resty/resty/v2"
)

func main() {
	baseURL := flag.String("url", "http://localhost:5000", "gateway base URL")
	count := flag.Int("count", 20, "number of readings to send")
	interval := flag.Duration("interval", time.Second, "delay between readings")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	client := resty.New().
		SetBaseURL(*baseURL).
		SetTimeout(5 * time.Second).
		SetHeader("Content-Type", "text/plain; charset=utf-8")

	gen := newGenerator(rand.New(rand.NewSource(*seed)))

	failures := 0
	for i := 0; i < *count; i++ {
		reading := gen.next(i)
		status, body, err := send(client, reading)
		if err != nil {
			failures++
			fmt.Printf("[%d/%d] %s -> error: %v\n", i+1, *count, reading, err)
		} else {
			fmt.Printf("[%d/%d] %s -> %d %s\n", i+1, *count, reading, status, body)
		}

		if i < *count-1 {
			time.Sleep(*interval)
		}
	}

	fmt.Printf("Sent %d readings, %d failed\n", *count, failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func send(client *resty.Client, reading models.Reading) (int, string, error) {
	resp, err := client.R().
		SetBody(reading.String()).
		Post("/receber_dados")
	if err != nil {
		return 0, "", err
	}
	if resp.IsError() {
		return resp.StatusCode(), resp.String(), fmt.Errorf("gateway answered %s: %s", resp.Status(), resp.String())
	}
	return resp.StatusCode(), resp.String(), nil
}

// generator produces smoke readings on a slow drift with periodic spikes,
// and movement as a PIR-style 0/1 flag.
type generator struct {
	rnd *rand.Rand
}

func newGenerator(rnd *rand.Rand) *generator {
	return &generator{rnd: rnd}
}

func (g *generator) next(i int) models.Reading {
	baseSmoke := 120.0 + 30.0*math.Sin(float64(i)*math.Pi/30)
	noise := g.rnd.Float64()*20 - 10

	// Every 15th sample simulates smoke from the kitchen
	if i > 0 && i%15 == 0 {
		baseSmoke += g.rnd.Float64()*200 + 300
	}

	movement := 0
	if g.rnd.Float64() < 0.2 {
		movement = 1
	}

	return models.Reading{
		Movimento: movement,
		Fumo:      int(math.Max(0, baseSmoke+noise)),
	}
}
