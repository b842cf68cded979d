package models

// OdometerEntry records the start and end readings of one working day.
type OdometerEntry struct {
	ID      string `json:"id"`
	Date    Date   `json:"date"`
	StartKm int    `json:"startKm"`
	EndKm   int    `json:"endKm"`
}

func (o OdometerEntry) RecordID() string { return o.ID }

// UpsertKey is the day, since there is at most one entry per day.
func (o OdometerEntry) UpsertKey() string { return o.Date.String() }

func (o OdometerEntry) Validate() error {
	if err := requireText("id", o.ID); err != nil {
		return err
	}
	if err := requireDate("date", o.Date); err != nil {
		return err
	}
	if o.StartKm < 0 || o.EndKm < 0 {
		return invalidf("odometer readings must not be negative")
	}
	return nil
}

// Distance is the km driven that day. An unset or lower end reading yields 0.
func (o OdometerEntry) Distance() int {
	if o.EndKm <= o.StartKm {
		return 0
	}
	return o.EndKm - o.StartKm
}
