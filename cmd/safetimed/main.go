/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// safetimed runs periodic NTP syncs and serves the corrected time state
// over a monitoring HTTP endpoint. It never touches the system clock.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/shirou/gopsutil/host"
	log "github.com/sirupsen/logrus"

	"github.com/facebook/safetime/cache"
	"github.com/facebook/safetime/listener"
	"github.com/facebook/safetime/ntp"
	"github.com/facebook/safetime/safetime"
	"github.com/facebook/safetime/stats"
)

// sdNotify notifies systemd about service successful start
func sdNotify() {
	// daemon.SdNotify returns one of the following:
	// (false, nil) - notification not supported (i.e. NOTIFY_SOCKET is unset)
	// (false, err) - notification supported, but failure happened
	// (true, nil) - notification supported, data has been sent
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if !supported && err != nil {
		log.Errorf("sd_notify failed: %v", err)
	} else if !supported {
		log.Warning("sd_notify not supported")
	} else {
		log.Info("successfully sent sd_notify event")
	}
}

// offsetStatsListener feeds every trusted offset into the running
// distribution served at /stats/offset.
type offsetStatsListener struct {
	listener.NoOp
	stats *stats.OffsetStats
}

func (l *offsetStatsListener) OnSuccessful(sample ntp.TimeSample) {
	l.stats.Add(sample.OffsetMS)
}

func main() {
	var (
		cfgPath string
		verbose bool
	)

	flag.StringVar(&cfgPath, "cfg", "/etc/safetimed.yaml", "Path to config")
	flag.BoolVar(&verbose, "verbose", false, "Verbose logging")
	flag.Parse()

	if verbose {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := ReadConfig(cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	log.Debugf("Config: %+v", *cfg)

	// Boot time gives an operator the concrete reason a cache was
	// discarded when the reboot-detection path clears it.
	if bootSec, err := host.BootTime(); err == nil {
		log.Infof("host booted at %s", time.Unix(int64(bootSec), 0).UTC().Format(time.RFC3339))
	} else {
		log.Warnf("could not read host boot time: %v", err)
	}

	prom := listener.NewPrometheusListener()
	jsonStats := listener.NewJSONListener()
	offsetStats := stats.NewOffsetStats()

	b := safetime.NewBuilder().
		Hosts(cfg.Hosts...).
		ConnectionTimeout(cfg.ConnectionTimeout).
		MaxRetryPerHost(cfg.MaxRetryPerHost).
		MaxRetryLoop(cfg.MaxRetryLoop).
		DelayBetweenRetryLoop(cfg.DelayBetweenRetryLoop).
		RootDelayMax(cfg.RootDelayMax).
		RootDispersionMax(cfg.RootDispersionMax).
		ServerResponseDelayMax(cfg.ServerResponseDelayMax).
		DefaultListener(listener.Multi{prom, jsonStats, &offsetStatsListener{stats: offsetStats}})
	if cfg.CachePath != "" {
		b = b.Store(cache.NewINIStore(cfg.CachePath))
	}
	opts, err := b.Build()
	if err != nil {
		log.Fatal(err)
	}
	st := safetime.New(opts)

	mux := http.NewServeMux()
	mux.Handle("/metrics", prom.Handler())
	mux.Handle("/counters", jsonStats.Handler())
	mux.HandleFunc("/stats/offset", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "{\"count\": %d, \"mean_ms\": %f, \"stddev_ms\": %f}\n",
			offsetStats.Count(), offsetStats.Mean(), offsetStats.Stddev())
	})
	mux.HandleFunc("/now", func(w http.ResponseWriter, r *http.Request) {
		ms, err := st.Now()
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, "{\"now_ms\": %d}\n", ms)
	})
	go func() {
		addr := fmt.Sprintf(":%d", cfg.MonitoringPort)
		log.Infof("monitoring server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Fatalf("monitoring server: %v", err)
		}
	}()

	notified := false
	runSync := func() {
		task := st.Sync()
		for !task.IsDone() {
			time.Sleep(10 * time.Millisecond)
		}
		if ms, err := st.Now(); err == nil {
			log.Infof("corrected time: %s", time.UnixMilli(ms).UTC().Format(time.RFC3339Nano))
			if !notified {
				sdNotify()
				notified = true
			}
		} else {
			log.Errorf("sync finished without a usable cache: %v", err)
		}
	}

	runSync()
	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()
	for range ticker.C {
		runSync()
	}
}
