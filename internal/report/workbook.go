// Package report renders a hotel's booking dashboard as an xlsx workbook.
package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/hotel-booking/internal/booking"
)

const (
	SummarySheet  = "Summary"
	BookingsSheet = "Bookings"
)

var bookingHeaders = []string{
	"Booking ID", "Guest", "Email", "Room Type", "Check In", "Check Out",
	"Guests", "Total Price", "Status", "Payment Method", "Paid", "Created At",
}

const dateLayout = "2006-01-02 15:04"

// Workbook writes d into a two-sheet workbook: totals on SummarySheet and
// one row per booking on BookingsSheet, in dashboard order.
func Workbook(hotelName string, d booking.Dashboard) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Hotel", hotelName},
		{"Total Bookings", d.TotalBookings},
		{"Total Revenue", d.TotalRevenue},
	}
	for i, row := range summary {
		if err := setRow(f, SummarySheet, i+1, row); err != nil {
			return nil, err
		}
	}

	if _, err := f.NewSheet(BookingsSheet); err != nil {
		return nil, err
	}
	header := make([]any, len(bookingHeaders))
	for i, h := range bookingHeaders {
		header[i] = h
	}
	if err := setRow(f, BookingsSheet, 1, header); err != nil {
		return nil, err
	}
	for i, b := range d.Bookings {
		var guest, email string
		if b.User != nil {
			guest, email = b.User.Username, b.User.Email
		}
		row := []any{
			b.ID, guest, email, string(b.Room.RoomType),
			b.CheckInDate.Format(dateLayout), b.CheckOutDate.Format(dateLayout),
			b.Guests, b.TotalPrice, string(b.Status), b.PaymentMethod, b.IsPaid,
			b.CreatedAt.Format(dateLayout),
		}
		if err := setRow(f, BookingsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf, nil
}

func setRow(f *excelize.File, sheet string, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
