package services

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/database"
	"github.com/pdiazg46-design/Portal-Sistema-Estacionamientos/models"
)

// ReportSummary aggregates revenue and traffic over a date range.
type ReportSummary struct {
	TotalRevenue        int     `json:"total_revenue"`
	TimeRevenue         int     `json:"time_revenue"`
	SubscriptionRevenue int     `json:"subscription_revenue"`
	TotalEntries        int     `json:"total_entries"`
	ManualEntries       int     `json:"manual_entries"`
	SubscriberEntries   int     `json:"subscriber_entries"`
	AvgStaySeconds      float64 `json:"avg_stay_seconds"`
	AvgRevenuePerEntry  float64 `json:"avg_revenue_per_entry"`
}

type DailyRevenue struct {
	Day     string `json:"day"`
	Revenue int    `json:"revenue"`
	Entries int    `json:"entries"`
}

type HourlyTraffic struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// VisitEntry is one billable visit for the cross-check list.
type VisitEntry struct {
	LicensePlate string     `json:"license_plate"`
	EntryTime    time.Time  `json:"entry_time"`
	ExitTime     *time.Time `json:"exit_time"`
	Cost         *int       `json:"cost"`
	SpotCode     string     `json:"spot_code"`
}

// SubscriberEntry is one RESERVED spot with its subscriber, if any.
type SubscriberEntry struct {
	Name       *string `json:"name"`
	Plate      *string `json:"plate"`
	SpotCode   string  `json:"spot_code"`
	MonthlyFee *int    `json:"monthly_fee"`
}

// ReportData is the full aggregation over a range.
type ReportData struct {
	Summary         ReportSummary     `json:"summary"`
	DailyRevenue    []DailyRevenue    `json:"daily_revenue"`
	HourlyTraffic   []HourlyTraffic   `json:"hourly_traffic"`
	VisitsList      []VisitEntry      `json:"visits_list"`
	SubscribersList []SubscriberEntry `json:"subscribers_list"`
	ChargingEnabled bool              `json:"charging_enabled"`
}

// monthsInRange prorates monthly fees by ceil(days)/30, collapsing to
// exactly one month for 28-32 day ranges so a calendar month is never
// over- or under-billed by a day or two.
func monthsInRange(start, end time.Time) float64 {
	diffDays := int(math.Ceil(end.Sub(start).Hours() / 24))
	if diffDays < 1 {
		diffDays = 1
	}
	if diffDays >= 28 && diffDays <= 32 {
		return 1.0
	}
	return float64(diffDays) / 30.0
}

// GetReportData aggregates all records whose entry time falls in
// [start 00:00, end 23:59:59] into revenue, traffic and detail lists.
func GetReportData(start, end time.Time) (*ReportData, error) {
	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	end = time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, end.Location())

	var records []models.ParkingRecord
	if err := database.DB.
		Where("entry_time >= ? AND entry_time <= ?", start, end).
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch records in range: %w", err)
	}
	log.Printf("Report range %s to %s: %d records", start.Format("2006-01-02"), end.Format("2006-01-02"), len(records))

	var allSpots []models.ParkingSpot
	if err := database.DB.Find(&allSpots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch spots: %w", err)
	}
	spotCodes := make(map[int]string, len(allSpots))
	for _, spot := range allSpots {
		spotCodes[spot.ID] = spot.Code
	}

	timeRevenue := 0
	manualEntries := 0
	subscriberEntries := 0
	revenueByDay := make(map[string]int)
	entriesByDay := make(map[string]int)
	peakHours := make([]int, 24)
	totalDurationSeconds := 0.0
	exitCount := 0
	var visits []VisitEntry

	for _, r := range records {
		cost := 0
		if r.Cost != nil {
			cost = *r.Cost
		}
		timeRevenue += cost

		day := r.EntryTime.Format("2006-01-02")
		revenueByDay[day] += cost
		entriesByDay[day]++
		peakHours[r.EntryTime.Hour()]++

		if r.ExitTime != nil {
			totalDurationSeconds += r.ExitTime.Sub(r.EntryTime).Seconds()
			exitCount++
		}

		switch r.EntryType {
		case models.EntryManual:
			manualEntries++
			spotCode := "N/A"
			if r.SpotID != nil {
				if code, ok := spotCodes[*r.SpotID]; ok {
					spotCode = code
				}
			}
			visits = append(visits, VisitEntry{
				LicensePlate: r.LicensePlate,
				EntryTime:    r.EntryTime,
				ExitTime:     r.ExitTime,
				Cost:         r.Cost,
				SpotCode:     spotCode,
			})
		case models.EntryAutomatic:
			subscriberEntries++
		}
	}

	// Subscription revenue only counts RESERVED spots with an active
	// assignment, prorated over the range.
	type feeRow struct {
		MonthlyFee *int
	}
	var assignedFees []feeRow
	if err := database.DB.Model(&models.ParkingSpot{}).
		Select("parking_spots.monthly_fee").
		Joins("JOIN staff_members ON staff_members.assigned_spot_id = parking_spots.id").
		Scan(&assignedFees).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscribed spots: %w", err)
	}
	monthlyTotal := 0
	for _, row := range assignedFees {
		if row.MonthlyFee != nil {
			monthlyTotal += *row.MonthlyFee
		}
	}
	subscriptionRevenue := int(math.Round(float64(monthlyTotal) * monthsInRange(start, end)))

	// Subscriber list for the cross-check view: every RESERVED spot,
	// joined with its subscriber when there is one.
	var reservedSpots []models.ParkingSpot
	if err := database.DB.Where("type = ?", models.SpotReserved).Order("code ASC").Find(&reservedSpots).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch reserved spots: %w", err)
	}
	var subscribers []SubscriberEntry
	for _, spot := range reservedSpots {
		entry := SubscriberEntry{SpotCode: spot.Code, MonthlyFee: spot.MonthlyFee}
		var staff models.StaffMember
		if err := database.DB.Where("assigned_spot_id = ?", spot.ID).First(&staff).Error; err == nil {
			name := staff.Name
			plate := staff.LicensePlate
			entry.Name = &name
			entry.Plate = &plate
		}
		subscribers = append(subscribers, entry)
	}

	dailyRevenue := make([]DailyRevenue, 0, len(revenueByDay))
	for day, revenue := range revenueByDay {
		dailyRevenue = append(dailyRevenue, DailyRevenue{Day: day, Revenue: revenue, Entries: entriesByDay[day]})
	}
	sort.Slice(dailyRevenue, func(i, j int) bool { return dailyRevenue[i].Day < dailyRevenue[j].Day })

	hourlyTraffic := make([]HourlyTraffic, 24)
	for hour, count := range peakHours {
		hourlyTraffic[hour] = HourlyTraffic{Hour: hour, Count: count}
	}

	avgStay := 0.0
	if exitCount > 0 {
		avgStay = totalDurationSeconds / float64(exitCount)
	}
	avgRevenue := 0.0
	if manualEntries > 0 {
		avgRevenue = float64(timeRevenue) / float64(manualEntries)
	}

	chargingEnabled, err := IsChargingEnabled()
	if err != nil {
		return nil, err
	}

	return &ReportData{
		Summary: ReportSummary{
			TotalRevenue:        timeRevenue + subscriptionRevenue,
			TimeRevenue:         timeRevenue,
			SubscriptionRevenue: subscriptionRevenue,
			TotalEntries:        len(records),
			ManualEntries:       manualEntries,
			SubscriberEntries:   subscriberEntries,
			AvgStaySeconds:      avgStay,
			AvgRevenuePerEntry:  avgRevenue,
		},
		DailyRevenue:    dailyRevenue,
		HourlyTraffic:   hourlyTraffic,
		VisitsList:      visits,
		SubscribersList: subscribers,
		ChargingEnabled: chargingEnabled,
	}, nil
}
