package models

import "time"

// Event is a bookable event
type Event struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description,omitempty" db:"description"`
	EventDate   time.Time `json:"event_date" db:"event_date"`
	City        string    `json:"city" db:"city"`
	Venue       string    `json:"venue" db:"venue"`
	CreatedBy   string    `json:"created_by" db:"created_by"`
}

// CreateEventRequest is used by both the public add-event form and the admin console
type CreateEventRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	EventDate   string  `json:"event_date" binding:"required"`
	City        string  `json:"city" binding:"required"`
	Venue       string  `json:"venue" binding:"required"`
	CreatedBy   string  `json:"created_by"`
}

// DefaultEventIDBase is the id of the first seeded catalog event
const DefaultEventIDBase = 1000

// CatalogItem is a static catalog entry shown on the landing page
type CatalogItem struct {
	ID    int    `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	Image string `json:"image,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// DefaultEvents lists the seeded catalog in id order
var DefaultEvents = []CatalogItem{
	{Title: "Birthday", Icon: "assets/icons/cake.png"},
	{Title: "Anniversary", Icon: "assets/icons/wedding.png"},
	{Title: "Meeting", Icon: "assets/icons/discussion.png"},
	{Title: "Graduation", Icon: "assets/icons/graduation-hat-and-diploma.png"},
	{Title: "Concert", Icon: "assets/icons/singer.png"},
	{Title: "Festivals", Icon: "assets/icons/tent.png"},
	{Title: "Charity", Icon: "assets/icons/globe.png"},
	{Title: "Reunion", Icon: "assets/icons/users.png"},
	{Title: "Farewell", Icon: "assets/icons/waving-goodbye.png"},
	{Title: "Marriage", Icon: "assets/icons/bridal.png"},
	{Title: "Engagement", Icon: "assets/icons/engagement-ring.png"},
	{Title: "Baby Shower", Icon: "assets/icons/baby-shower.png"},
	{Title: "College Events", Icon: "assets/icons/calendar.png"},
	{Title: "Customized...", Icon: "assets/icons/catering.png"},
}

// Highlights lists the landing page highlight tiles
var Highlights = []CatalogItem{
	{ID: 1, Name: "Birthday", Image: "assets/images/cake.jpeg"},
	{ID: 2, Name: "Anniversary", Image: "assets/images/wedding.jpeg"},
	{ID: 3, Name: "Meeting", Image: "assets/images/discussion.jpeg"},
	{ID: 4, Name: "Graduation", Image: "assets/images/graduation.jpeg"},
	{ID: 5, Name: "Concert", Image: "assets/images/singer.jpeg"},
	{ID: 6, Name: "Festivals", Image: "assets/images/fest.jpeg"},
	{ID: 7, Name: "Charity", Image: "assets/images/charity.jpeg"},
	{ID: 8, Name: "Reunion", Image: "assets/images/reunion.jpeg"},
	{ID: 9, Name: "Farewell", Image: "assets/images/fare.jpeg"},
	{ID: 10, Name: "Marriage", Image: "assets/images/marriage.jpeg"},
	{ID: 11, Name: "Engagement", Image: "assets/images/engage.jpeg"},
	{ID: 12, Name: "Baby Shower", Image: "assets/images/baby.jpeg"},
	{ID: 13, Name: "College Events", Image: "assets/images/college.jpeg"},
	{ID: 14, Name: "Customized...", Image: "assets/images/customized.jpeg"},
}

// Cities lists the supported cities
var Cities = []CatalogItem{
	{Name: "Vijayawada", Icon: "https://img.images8.com/ios-filled/70/000000/city.png"},
	{Name: "Visakhapatnam", Icon: "https://img.images8.com/ios-filled/70/000000/beach.png"},
	{Name: "Guntur", Icon: "https://img.images8.com/ios-filled/70/000000/monument.png"},
	{Name: "Nellore", Icon: "https://img.images8.com/ios-filled/70/000000/temple.png"},
	{Name: "Tirupati", Icon: "https://img.images8.com/ios-filled/70/000000/temple.png"},
	{Name: "Kurnool", Icon: "https://img.images8.com/ios-filled/70/000000/bridge.png"},
	{Name: "Rajahmundry", Icon: "https://img.images8.com/ios-filled/70/000000/soil.png"},
	{Name: "Kakinada", Icon: "https://img.images8.com/ios-filled/70/000000/city.png"},
	{Name: "Eluru", Icon: "https://img.images8.com/ios-filled/70/000000/building.png"},
	{Name: "Anantapur", Icon: "https://img.images8.com/ios-filled/70/000000/palace.png"},
}

// DefaultEventID resolves a seeded catalog event by case-insensitive title
func DefaultEventID(name string) (int64, bool) {
	for i, e := range DefaultEvents {
		if toUpper(e.Title) == toUpper(name) {
			return int64(DefaultEventIDBase + i), true
		}
	}
	return 0, false
}

// SaveCityRequest records the visitor's city choice
type SaveCityRequest struct {
	City string `json:"city" binding:"required"`
}

// SaveDateRequest records the visitor's date choice as YYYY-MM-DD
type SaveDateRequest struct {
	Date string `json:"date" binding:"required"`
}
