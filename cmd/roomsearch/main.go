// Command roomsearch lists the public rooms of a booking server, filtered
// and sorted locally.
//
//	roomsearch -url http://localhost:8080 -type "Double Bed" -price "0 to 500" -sort "Price Low to High" -dest lisbon
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/iliyamo/hotel-booking/internal/client"
	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/roomfilter"
)

// listFlag collects a repeatable string flag.  Repeated values are kept
// once.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ", ") }

func (l *listFlag) Set(v string) error {
	*l = roomfilter.ToggleValue(*l, v, true)
	return nil
}

func main() {
	var (
		types  listFlag
		prices listFlag
	)
	baseURL := flag.String("url", "http://localhost:8080", "server base URL")
	token := flag.String("token", os.Getenv("BOOKING_TOKEN"), "bearer token; enables -record")
	sort := flag.String("sort", "", `"Price Low to High", "Price High to Low" or "Newest First"`)
	dest := flag.String("dest", "", "destination city, case-insensitive substring")
	record := flag.Bool("record", false, "store -dest as a recent search of the signed-in user")
	flag.Var(&types, "type", "room type, repeatable")
	flag.Var(&prices, "price", `price range such as "0 to 500", repeatable`)
	flag.Parse()

	key, ok := roomfilter.ParseSortKey(*sort)
	if !ok {
		log.Fatalf("roomsearch: unknown sort %q", *sort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := client.NewSession(ctx, *baseURL, client.WithToken(*token))
	defer s.Close()

	if *record && *dest != "" {
		if *token == "" {
			log.Fatal("roomsearch: -record needs -token")
		}
		cities, err := s.RecordSearch(ctx, *dest)
		if err != nil {
			log.Fatalf("roomsearch: %v", err)
		}
		fmt.Fprintf(os.Stderr, "recent searches: %s\n", strings.Join(cities, ", "))
	}

	if _, err := s.FetchRooms(ctx); err != nil {
		log.Fatalf("roomsearch: %v", err)
	}
	rooms := s.View(roomfilter.Options{
		RoomTypes:   types,
		PriceRanges: prices,
		Sort:        key,
		Destination: *dest,
	})
	printRooms(rooms, time.Now())
}

func printRooms(rooms []model.RoomListing, now time.Time) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HOTEL\tCITY\tROOM\tPER NIGHT\tAMENITIES\tLISTED\tIMAGE")
	for _, r := range rooms {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Hotel.Name, r.Hotel.City, r.RoomType,
			humanize.CommafWithDigits(r.PricePerNight, 2),
			strings.Join(r.Amenities, ", "),
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
			r.PrimaryImage())
	}
	_ = w.Flush()
	fmt.Fprintf(os.Stderr, "%s rooms\n", humanize.Comma(int64(len(rooms))))
}
