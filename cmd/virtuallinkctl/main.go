// Command virtuallinkctl starts one emulated 802.15.4 radio on the virtual
// medium and prints every received frame and protocol event to stdout. It
// is a diagnostic tool, not a production radio host.
package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/pflag"

	"github.com/Jatsekku/virtualLink"
	"github.com/Jatsekku/virtualLink/codec"
)

func main() {
	var (
		configPath  = pflag.String("config", "", "YAML configuration file")
		iface       = pflag.String("iface", "127.0.0.1", "interface IPv4 address to join the multicast group on")
		tx          = pflag.String("tx", "127.0.0.1:9000", "local tx socket address (host:port)")
		rx          = pflag.String("rx", "224.0.0.116:9000", "multicast rx group address (host:port)")
		panID       = pflag.Uint16("pan", 0x4321, "PAN identifier")
		shortAddr   = pflag.Uint16("short", 0x0000, "16-bit short address")
		channel     = pflag.Uint8("channel", 11, "802.15.4 channel (11-26)")
		promiscuous = pflag.Bool("promiscuous", false, "disable PAN/address filtering")
	)
	pflag.Parse()

	fileCfg, err := loadFileConfig(*configPath)
	if err != nil {
		log.Fatalf("virtuallinkctl: %v", err)
	}
	// Values from the file apply only where the matching flag was not given
	// on the command line, so explicit flags override the file.
	changed := pflag.CommandLine.Changed
	if fileCfg.Interface != "" && !changed("iface") {
		*iface = fileCfg.Interface
	}
	if fileCfg.TxAddr != "" && !changed("tx") {
		*tx = fileCfg.TxAddr
	}
	if fileCfg.RxAddr != "" && !changed("rx") {
		*rx = fileCfg.RxAddr
	}
	if fileCfg.PANID != 0 && !changed("pan") {
		*panID = fileCfg.PANID
	}
	if fileCfg.ShortAddr != 0 && !changed("short") {
		*shortAddr = fileCfg.ShortAddr
	}
	if fileCfg.Channel != 0 && !changed("channel") {
		*channel = fileCfg.Channel
	}
	if fileCfg.Promiscuous && !changed("promiscuous") {
		*promiscuous = true
	}

	mediumCfg, ok := virtuallink.ConfigureFromStrings(*iface, *tx, *rx)
	if !ok {
		log.Fatalf("virtuallinkctl: invalid socket configuration")
	}

	medium, err := virtuallink.NewMediumEndpoint(mediumCfg)
	if err != nil {
		log.Fatalf("virtuallinkctl: %v", err)
	}
	defer medium.Close()

	radio := virtuallink.NewRadioCore(virtuallink.RadioMetaConfig{
		Medium:     medium,
		SkipSHRPHR: true,
	}, codec.Simple{})

	radio.SetChannel(*channel)
	radio.PANID = *panID
	radio.ShortAddr = *shortAddr
	radio.Promiscuous = *promiscuous

	radio.RegisterRxDone(func(status virtuallink.RxStatus, mpdu []byte) {
		fmt.Printf("rx_done status=%v bytes=%d payload=%q\n", status, len(mpdu), mpdu)
	})
	radio.RegisterAckDone(func(status virtuallink.AckStatus, mpdu []byte) {
		fmt.Printf("ack_done status=%v\n", status)
	})

	radio.Enable()
	radio.Receive()

	log.Printf("virtuallinkctl listening: iface=%s rx=%s pan=%#04x short=%#04x channel=%d promiscuous=%v",
		*iface, *rx, *panID, *shortAddr, *channel, *promiscuous)

	driver := virtuallink.NewDriver(radio)
	for {
		driver.ProcessingLoop()
		time.Sleep(10 * time.Millisecond)
	}
}
