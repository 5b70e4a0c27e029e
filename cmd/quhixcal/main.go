package main

import (
	"os"

	"github.com/docopt/docopt-go"
	log "github.com/sirupsen/logrus"
)

const QuhixcalVersion = "0.1.0"

const usage = `Quhixcal calendar client.

Lists the events of a month, adds new ones and keeps a live agenda on screen.
Configuration comes from the config file and QUHIXCAL_* environment variables.

Usage:
    quhixcal list [--config=<path>] [--month=<yyyy-mm>] [--expand]
    quhixcal add [--config=<path>] --date=<date> --title=<title>
        [--recurrence=<recurrence>]
    quhixcal watch [--config=<path>] [--month=<yyyy-mm>] [--expand]

Options:
    -h --help                   Show this screen.
    --version                   Show version.
    --config=<path>             Config file [default: ./config/application.yaml].
    --month=<yyyy-mm>           Month to show, the current one when omitted.
    --expand                    Show every occurrence of recurring events in the month.
    --date=<date>               Event date, YYYY-MM-DD.
    --title=<title>             Event title.
    --recurrence=<recurrence>   none, daily, weekly or monthly [default: none].`

func init() {
	level := os.Getenv("LOG_LEVEL")
	if level != "" {
		logrusLevel, err := log.ParseLevel(level)
		if err != nil {
			log.Fatal(err)
		}
		log.SetLevel(logrusLevel)
	} else {
		log.SetLevel(log.WarnLevel)
	}
}

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], QuhixcalVersion)
	if err != nil {
		log.Fatal(err)
	}
	os.Exit(run(opts, os.Stdout, os.Stderr))
}
