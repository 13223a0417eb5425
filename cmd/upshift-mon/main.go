package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/upshift/pkg/telemetry"
	"github.com/robotalks/upshift/pkg/telemetry/mqtt"
	"github.com/robotalks/upshift/pkg/telemetry/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/upshift/"
)

func init() {
	if val := os.Getenv("UPSHIFT_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q.Sub("+/"+telemetry.StatsTopic, mqtt.Handler(func(topic string, payload []byte) {
		s, err := msgs.DecodeStats(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: %s", topic, s.String())
	}))
	q.Sub("+/"+telemetry.DropTopic, mqtt.Handler(func(topic string, payload []byte) {
		ev, err := msgs.DecodeEvent(payload)
		if err != nil {
			log.Printf("%s: bad message: %v", topic, err)
			return
		}
		log.Printf("%s: %s %q", strings.TrimSuffix(topic, "/"+telemetry.DropTopic), ev.Kind, rune(ev.Unit&0xff))
	}))
	if err = q.Connect(); err != nil {
		log.Fatalln(err)
	}
	<-(chan struct{})(nil)
}
