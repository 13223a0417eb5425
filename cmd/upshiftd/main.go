package main

//go-build: CGO_ENABLED=0

import (
	"context"
	"flag"
	"log"

	"github.com/golang/glog"

	"github.com/robotalks/upshift/pkg/board"
	"github.com/robotalks/upshift/pkg/config"
	fx "github.com/robotalks/upshift/pkg/framework"
	"github.com/robotalks/upshift/pkg/telemetry"
	"github.com/robotalks/upshift/pkg/telemetry/mqtt"
	"github.com/robotalks/upshift/pkg/xcvr"
)

func init() {
	config.SetupFlags()
}

func newReporter(conf *config.Config) *telemetry.Reporter {
	if conf.MQTTBrokerURL == "" {
		return nil
	}
	q, err := mqtt.NewQueueFromURL(conf.MQTTBrokerURL)
	if err != nil {
		log.Fatalln(err)
	}
	if err = q.Connect(); err != nil {
		log.Fatalf("connect %s: %v", conf.MQTTBrokerURL, err)
	}
	r := telemetry.NewReporter(conf.DeviceID, &telemetry.QueuePublisher{Queue: q})
	r.Interval = conf.StatsInterval
	return r
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := config.NewConfig()
	if err := conf.Validate(); err != nil {
		log.Fatalln(err)
	}
	fwConf := conf.MustFirmwareConfig()
	observers := xcvr.Observers{xcvr.ObserveFunc(board.LogEvent)}
	reporter := newReporter(conf)
	if reporter != nil && conf.PublishDrops {
		observers = append(observers, reporter)
	}
	fwConf.Observer = observers

	b, err := board.New(fwConf)
	if err != nil {
		log.Fatalln(err)
	}
	line := conf.MustOpenLine()
	defer line.Close()
	b.Line.Attach(line, line)

	g := fx.NewGroup(context.Background()).HandleSignals().Go(b.Runnables()...)
	if reporter != nil {
		reporter.Source = b.Device.Stats()
		g.Go(fx.NamedRun("telemetry", reporter))
	}
	glog.Infof("device %s running, line %s", conf.DeviceID, conf.LineURL)
	g.WaitOrFail()
}
