package catalog

import "sharedspace/internal/models"

var spaces = []models.Space{
	{
		ID:          "1",
		Name:        "KL Badminton Arena",
		Type:        models.SpaceSport,
		Description: "Professional badminton court with premium flooring and lighting. Perfect for tournaments and casual games.",
		Images:      []string{"/placeholder-badminton.jpg"},
		Location: models.Location{
			Address:     "Jalan Ampang, Kuala Lumpur",
			City:        "Kuala Lumpur",
			State:       "Selangor",
			Coordinates: models.Coordinates{Lat: 3.139, Lng: 101.6869},
		},
		Amenities:    []string{"Air Conditioning", "Changing Rooms", "Equipment Rental", "Parking", "Shower Facilities"},
		Capacity:     4,
		PricePerHour: 45,
		Rating:       4.8,
		Reviews:      124,
	},
	{
		ID:          "2",
		Name:        "Elite Futsal Center",
		Type:        models.SpaceSport,
		Description: "Indoor futsal court with FIFA-approved artificial turf and professional goal posts.",
		Images:      []string{"/placeholder-futsal.jpg"},
		Location: models.Location{
			Address:     "Petaling Jaya, Selangor",
			City:        "Petaling Jaya",
			State:       "Selangor",
			Coordinates: models.Coordinates{Lat: 3.1073, Lng: 101.6421},
		},
		Amenities:    []string{"Artificial Turf", "Changing Rooms", "Ball Rental", "Parking", "Canteen"},
		Capacity:     12,
		PricePerHour: 80,
		Rating:       4.7,
		Reviews:      89,
	},
	{
		ID:          "3",
		Name:        "TechHub Conference Room",
		Type:        models.SpaceMeeting,
		Description: "Modern conference room with state-of-the-art AV equipment and video conferencing capabilities.",
		Images:      []string{"/placeholder-meeting.jpg"},
		Location: models.Location{
			Address:     "KLCC, Kuala Lumpur",
			City:        "Kuala Lumpur",
			State:       "Selangor",
			Coordinates: models.Coordinates{Lat: 3.1478, Lng: 101.6953},
		},
		Amenities:    []string{"Video Conferencing", "Projector", "Whiteboard", "WiFi", "Coffee Service", "Parking"},
		Capacity:     16,
		PricePerHour: 120,
		Rating:       4.9,
		Reviews:      156,
	},
	{
		ID:          "4",
		Name:        "Creative Coworking Space",
		Type:        models.SpaceCoworking,
		Description: "Inspiring coworking environment with hot desks, private pods, and collaborative areas.",
		Images:      []string{"/placeholder-coworking.jpg"},
		Location: models.Location{
			Address:     "Bangsar, Kuala Lumpur",
			City:        "Kuala Lumpur",
			State:       "Selangor",
			Coordinates: models.Coordinates{Lat: 3.1285, Lng: 101.6671},
		},
		Amenities:    []string{"High-Speed WiFi", "Printing Services", "Coffee Bar", "Phone Booths", "Networking Events"},
		Capacity:     1,
		PricePerHour: 15,
		Rating:       4.6,
		Reviews:      203,
	},
	{
		ID:          "5",
		Name:        "Grand Event Hall",
		Type:        models.SpaceEvent,
		Description: "Spacious event venue perfect for conferences, workshops, and corporate events.",
		Images:      []string{"/placeholder-event.jpg"},
		Location: models.Location{
			Address:     "Mont Kiara, Kuala Lumpur",
			City:        "Kuala Lumpur",
			State:       "Selangor",
			Coordinates: models.Coordinates{Lat: 3.1726, Lng: 101.6507},
		},
		Amenities:    []string{"Stage Setup", "Sound System", "Lighting", "Catering Service", "Parking", "Security"},
		Capacity:     200,
		PricePerHour: 300,
		Rating:       4.8,
		Reviews:      67,
	},
	{
		ID:          "6",
		Name:        "Basketball Court Pro",
		Type:        models.SpaceSport,
		Description: "Full-size basketball court with professional hoops and wooden flooring.",
		Images:      []string{"/placeholder-basketball.jpg"},
		Location: models.Location{
			Address:     "Subang Jaya, Selangor",
			City:        "Subang Jaya",
			State:       "Selangor",
			Coordinates: models.Coordinates{Lat: 3.0456, Lng: 101.5851},
		},
		Amenities:    []string{"Professional Court", "Ball Rental", "Scoreboard", "Changing Rooms", "Parking"},
		Capacity:     10,
		PricePerHour: 60,
		Rating:       4.5,
		Reviews:      94,
	},
}
