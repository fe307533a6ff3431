package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lumenmq/mqttc"
	"github.com/lumenmq/mqttc/packet"
)

func main() {
	conn, err := mqttc.Dial("tcp", "127.0.0.1:1883",
		mqttc.WithClientID("mqttc-demo"),
		mqttc.WithKeepAlive(30*time.Second),
	)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}

	if _, err := conn.Connect(); err != nil {
		log.Fatalf("connect: %v", err)
	}

	if _, err := conn.Subscribe([]packet.Subscription{
		{TopicFilter: "demo/+", MaximumQoS: packet.AtLeastOnce},
	}); err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-sig:
			if err := conn.Disconnect(); err != nil {
				log.Printf("disconnect: %v", err)
			}
			return
		case <-ticker.C:
			if _, err := conn.Publish_Qos1(false, false, "demo/heartbeat", []byte(time.Now().Format(time.RFC3339))); err != nil {
				log.Printf("publish: %v", err)
			}
		default:
			for !conn.IsIncomingEmpty() {
				msg, _ := conn.GetIncoming()
				log.Printf("received %s: %s", msg.TopicName, msg.Payload)
			}
			time.Sleep(100 * time.Millisecond)
		}
	}
}
