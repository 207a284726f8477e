package main

import (
	"virasat-setu/internal/artisan"
	"virasat-setu/internal/places"
)

func at(lat, lon float64) *places.Coordinate {
	return &places.Coordinate{Latitude: lat, Longitude: lon}
}

const workshopImage = "https://images.unsplash.com/photo-1610701596007-11502861dcfa?w=800"

func sampleArtisans() []artisan.Artisan {
	return []artisan.Artisan{
		{
			Name:        "Anokhi Block Printing Workshop",
			City:        "Jaipur",
			State:       "Rajasthan",
			Specialty:   "Block Printing",
			Description: "Traditional Rajasthani block printing on fabrics. Watch artisans create intricate patterns using wooden blocks.",
			Address:     "Tilak Nagar, Jaipur",
			Phone:       "+91-141-2630519",
			Website:     "https://anokhi.com",
			Image:       workshopImage,
			Coordinates: at(26.9124, 75.8223),
			Verified:    true,
		},
		{
			Name:        "Jaipur Blue Pottery Art Centre",
			City:        "Jaipur",
			State:       "Rajasthan",
			Specialty:   "Blue Pottery",
			Description: "Unique Persian-influenced pottery with vibrant blue glaze. Watch live demonstrations and buy authentic pieces.",
			Address:     "Amer Road, Jaipur",
			Phone:       "+91-141-2530607",
			Image:       workshopImage,
			Coordinates: at(26.9855, 75.8472),
			Verified:    true,
		},
		{
			Name:        "Maniharon Ka Rasta Jewelry Market",
			City:        "Jaipur",
			State:       "Rajasthan",
			Specialty:   "Jewelry Making",
			Description: "Traditional Rajasthani jewelry makers creating exquisite Kundan and Meenakari pieces using ancient techniques.",
			Address:     "Johri Bazaar, Jaipur",
			Image:       "https://images.unsplash.com/photo-1611652022419-a9419f74343d?w=800",
			Coordinates: at(26.9219, 75.8267),
			Verified:    true,
		},
		{
			Name:        "Banarasi Silk Weaving Centre",
			City:        "Varanasi",
			State:       "Uttar Pradesh",
			Specialty:   "Textile Weaving",
			Description: "Watch master weavers create intricate Banarasi silk sarees on traditional handlooms. Each saree takes weeks to complete.",
			Address:     "Peeli Kothi, Varanasi",
			Phone:       "+91-542-2450215",
			Image:       workshopImage,
			Coordinates: at(25.3176, 82.9739),
			Verified:    true,
		},
		{
			Name:        "Varanasi Brassware Artisans",
			City:        "Varanasi",
			State:       "Uttar Pradesh",
			Specialty:   "Metal Work",
			Description: "Traditional brass workers creating religious idols, lamps, and decorative items using age-old techniques.",
			Address:     "Thatheri Bazaar, Varanasi",
			Image:       workshopImage,
			Coordinates: at(25.3221, 82.9849),
			Verified:    true,
		},
		{
			Name:        "Miniature Painting School",
			City:        "Udaipur",
			State:       "Rajasthan",
			Specialty:   "Painting",
			Description: "Learn about traditional Rajasthani miniature paintings. Artists create intricate scenes using natural pigments and single-hair brushes.",
			Address:     "City Palace Road, Udaipur",
			Phone:       "+91-294-2419021",
			Image:       workshopImage,
			Coordinates: at(24.5854, 73.6833),
			Verified:    true,
		},
		{
			Name:        "Stone Carving Workshop",
			City:        "Khajuraho",
			State:       "Madhya Pradesh",
			Specialty:   "Sculpture",
			Description: "Traditional stone carvers creating intricate sculptures inspired by Khajuraho temples. See ancient techniques in action.",
			Address:     "Main Market, Khajuraho",
			Image:       workshopImage,
			Coordinates: at(24.8318, 79.9199),
			Verified:    true,
		},
		{
			Name:        "Auroville Pottery",
			City:        "Pondicherry",
			State:       "Tamil Nadu",
			Specialty:   "Handicrafts",
			Description: "Modern and traditional pottery techniques. Beautiful ceramic pieces inspired by Indian and international styles.",
			Address:     "Auroville, Pondicherry",
			Website:     "https://auroville.org",
			Image:       workshopImage,
			Coordinates: at(11.9959, 79.8083),
			Verified:    true,
		},
	}
}
