// Command checkin is a terminal client for the teacher check-in flow.
//
//	checkin status
//	checkin in --lat -6.2 --lng 106.8166
//	checkin out
//
// The API address, token and school come from flags or SCHOOL_API_URL, SCHOOL_API_TOKEN
// and SCHOOL_ID.
package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		os.Exit(1)
	}
}
