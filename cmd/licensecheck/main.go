// Command licensecheck validates a serial for this machine the way a client
// program would, printing the server's verdict.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	v1 "licensedesk.com/licensedesk/client/v1"
)

func main() {
	server := flag.String("server", "http://localhost:8090", "license server base URL")
	serial := flag.String("serial", "", "serial number to check")
	program := flag.String("program", "", "program name, when the server assigns it at activation")
	device := flag.String("device", "", "device id (defaults to this machine's fingerprint)")
	activate := flag.Bool("activate", false, "use the explicit activate call instead of check")
	flag.Parse()

	if *serial == "" {
		flag.Usage()
		os.Exit(2)
	}

	deviceID := *device
	if deviceID == "" {
		fp, err := v1.DeviceFingerprint()
		if err != nil {
			log.Fatalf("failed to fingerprint device: %v", err)
		}
		deviceID = fp
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	client := v1.NewLicenseDeskClient(*server, "")

	var result any
	valid := false
	if *activate {
		license, err := client.Check.Activate(ctx, *serial, deviceID, *program)
		if err != nil {
			log.Fatalf("activation failed: %v", err)
		}
		result, valid = license, license.IsValid()
	} else {
		res, err := client.Check.Check(ctx, *serial, deviceID, *program)
		if err != nil {
			log.Fatalf("check failed: %v", err)
		}
		result, valid = res, res.Valid
	}

	out, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(out))
	if !valid {
		os.Exit(1)
	}
}
