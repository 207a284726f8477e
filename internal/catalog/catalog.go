// 包 catalog：精选遗产城市的静态数据表，命中时不发起任何外部请求
package catalog

import (
	"strings"

	"virasat-setu/internal/places"
)

// 约束：表在包初始化时构建一次，之后只读；对外一律返回深拷贝
var (
	table map[string]places.CityRecord
	order []string
)

func init() {
	cities := []places.CityRecord{jaipur(), varanasi(), hampi(), udaipur(), pondicherry(), khajuraho()}
	table = make(map[string]places.CityRecord, len(cities))
	for _, c := range cities {
		k := normalize(c.Name)
		table[k] = c
		order = append(order, k)
	}
}

func normalize(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Lookup：大小写与首尾空白不敏感
func Lookup(name string) (places.CityRecord, bool) {
	c, ok := table[normalize(name)]
	if !ok {
		return places.CityRecord{}, false
	}
	return c.Clone(), true
}

// Cities：按展示顺序返回全部城市（深拷贝）
func Cities() []places.CityRecord {
	out := make([]places.CityRecord, 0, len(order))
	for _, k := range order {
		out = append(out, table[k].Clone())
	}
	return out
}

func place(id, name string, cat places.Category, lat, lon float64, addr, desc, img string) places.PlaceRecord {
	return places.PlaceRecord{
		ID:          id,
		Name:        name,
		Category:    cat,
		Latitude:    lat,
		Longitude:   lon,
		Address:     addr,
		Description: desc,
		Image:       img,
	}
}

func unsplashPhoto(id string) string {
	return "https://images.unsplash.com/photo-" + id + "?w=1200&q=80"
}

func jaipur() places.CityRecord {
	return places.CityRecord{
		Name:        "Jaipur",
		State:       "Rajasthan",
		Coordinates: places.Coordinate{Latitude: 26.9124, Longitude: 75.7873},
		Description: "The Pink City of Rajasthan, famous for its forts, palaces, and vibrant bazaars.",
		Image:       unsplashPhoto("1599661046289-e31897846e41"),
		Places: places.CityPlaces{
			Monuments: []places.PlaceRecord{
				place("jaipur-amber-fort", "Amber Fort", places.CategoryMonument, 26.9855, 75.8513,
					"Devisinghpura, Amer, Jaipur, Rajasthan",
					"A majestic hilltop fort overlooking Maota Lake, known for its architecture and light shows.",
					unsplashPhoto("1587314168485-3236c89c9aef")),
				place("jaipur-hawa-mahal", "Hawa Mahal", places.CategoryMonument, 26.9239, 75.8267,
					"Badi Choupad, Jaipur, Rajasthan",
					"The iconic Palace of Winds with hundreds of jharokha windows overlooking the old city.",
					unsplashPhoto("1603262110263-fb0112e7cc33")),
			},
			Restaurants: []places.PlaceRecord{
				place("jaipur-lmb", "Laxmi Mishthan Bhandar (LMB)", places.CategoryRestaurant, 26.9196, 75.8253,
					"Johari Bazaar, Jaipur, Rajasthan",
					"Legendary sweet shop and restaurant serving authentic Rajasthani thalis and sweets.",
					unsplashPhoto("1540189549336-e6e99c3679fe")),
			},
			Hotels: []places.PlaceRecord{
				place("jaipur-city-palace-view-hotel", "Heritage Stay near City Palace", places.CategoryHotel, 26.9258, 75.8237,
					"Old City, Jaipur, Rajasthan",
					"A boutique heritage stay with views of the old city and traditional Rajasthani décor.",
					unsplashPhoto("1582719478250-c89cae4dc85b")),
			},
			Attractions: []places.PlaceRecord{},
		},
	}
}

func varanasi() places.CityRecord {
	return places.CityRecord{
		Name:        "Varanasi",
		State:       "Uttar Pradesh",
		Coordinates: places.Coordinate{Latitude: 25.3176, Longitude: 82.9739},
		Description: "One of the oldest living cities in the world, known for its ghats, temples, and Ganga aarti.",
		Image:       unsplashPhoto("1583391733956-6c7823f3c8a0"),
		Places: places.CityPlaces{
			Monuments: []places.PlaceRecord{
				place("varanasi-dashashwamedh-ghat", "Dashashwamedh Ghat", places.CategoryMonument, 25.3067, 83.0104,
					"Dashashwamedh Ghat, Varanasi, Uttar Pradesh",
					"The most famous ghat of Varanasi, known for the grand evening Ganga aarti.",
					unsplashPhoto("1529253355930-ddbe423a2acb")),
			},
			Restaurants: []places.PlaceRecord{
				place("varanasi-kashi-chaat-bhandar", "Kashi Chaat Bhandar", places.CategoryRestaurant, 25.3096, 83.0076,
					"Godowlia, Varanasi, Uttar Pradesh",
					"Popular local spot for chaats and street food flavours of Kashi.",
					unsplashPhoto("1504753793650-d4a2b783c15e")),
			},
			Hotels: []places.PlaceRecord{
				place("varanasi-ghat-homestay", "Ghat-side Homestay", places.CategoryHotel, 25.2906, 83.0064,
					"Near Assi Ghat, Varanasi, Uttar Pradesh",
					"A homely stay close to the ghats, ideal for sunrise boat rides and walks.",
					unsplashPhoto("1540556159711-2f436a70e9a6")),
			},
			Attractions: []places.PlaceRecord{},
		},
	}
}

func hampi() places.CityRecord {
	return places.CityRecord{
		Name:        "Hampi",
		State:       "Karnataka",
		Coordinates: places.Coordinate{Latitude: 15.335, Longitude: 76.46},
		Description: "A UNESCO World Heritage Site with surreal boulder landscapes and ruins of the Vijayanagara Empire.",
		Image:       unsplashPhoto("1609920658906-8223bd289001"),
		Places: places.CityPlaces{
			Monuments: []places.PlaceRecord{
				place("hampi-vitthal-temple", "Vijaya Vittala Temple", places.CategoryMonument, 15.3426, 76.4746,
					"Hampi, Karnataka",
					"Iconic temple complex known for its stone chariot and musical pillars.",
					unsplashPhoto("1541417904950-b855846fe074")),
			},
			Restaurants: []places.PlaceRecord{
				place("hampi-riverside-cafe", "Riverside Café", places.CategoryRestaurant, 15.3372, 76.4598,
					"Near Tungabhadra River, Hampi, Karnataka",
					"A relaxed café serving South Indian and traveller-friendly meals with river views.",
					unsplashPhoto("1544145945-f90425340c7e")),
			},
			Hotels: []places.PlaceRecord{
				place("hampi-heritage-guesthouse", "Heritage Guesthouse", places.CategoryHotel, 15.3350, 76.4600,
					"Hampi Bazaar, Hampi, Karnataka",
					"Simple, comfortable guesthouse popular with backpackers exploring the ruins.",
					unsplashPhoto("1512453979798-5ea266f8880c")),
			},
			Attractions: []places.PlaceRecord{},
		},
	}
}

func udaipur() places.CityRecord {
	return places.CityRecord{
		Name:        "Udaipur",
		State:       "Rajasthan",
		Coordinates: places.Coordinate{Latitude: 24.5854, Longitude: 73.7125},
		Description: "The City of Lakes, known for its palaces, havelis, and romantic lakeside views.",
		Image:       unsplashPhoto("1587135941948-670b381f08ce"),
		Places: places.CityPlaces{
			Monuments: []places.PlaceRecord{
				place("udaipur-city-palace", "City Palace, Udaipur", places.CategoryMonument, 24.5764, 73.6835,
					"Old City, Udaipur, Rajasthan",
					"A grand palace complex on the banks of Lake Pichola, showcasing Mewar history.",
					unsplashPhoto("1512453979798-5ea266f8880c")),
			},
			Restaurants: []places.PlaceRecord{
				place("udaipur-lakeside-dining", "Lakeside Dining", places.CategoryRestaurant, 24.5724, 73.6794,
					"Near Lake Pichola, Udaipur, Rajasthan",
					"Romantic rooftop dining with views of the lake and lit‑up palaces.",
					unsplashPhoto("1514933651103-005eec06c04b")),
			},
			Hotels: []places.PlaceRecord{
				place("udaipur-haveli-stay", "Haveli Stay", places.CategoryHotel, 24.5800, 73.6840,
					"Old City, Udaipur, Rajasthan",
					"Traditional haveli converted into a boutique stay with courtyards and frescoes.",
					unsplashPhoto("1563298723-dcfebaa392e3")),
			},
			Attractions: []places.PlaceRecord{},
		},
	}
}

func pondicherry() places.CityRecord {
	return places.CityRecord{
		Name:        "Pondicherry",
		State:       "Tamil Nadu",
		Coordinates: places.Coordinate{Latitude: 11.9416, Longitude: 79.8083},
		Description: "A coastal town blending French colonial charm, colourful streets, and seaside promenades.",
		Image:       unsplashPhoto("1605518216938-7c31b0ad6a94"),
		Places: places.CityPlaces{
			Monuments: []places.PlaceRecord{
				place("pondicherry-promenade-beach", "Promenade Beach", places.CategoryMonument, 11.9340, 79.8357,
					"White Town, Pondicherry",
					"Popular seafront promenade lined with cafes, colonial buildings, and statues.",
					unsplashPhoto("1507525428034-b723cf961d3e")),
			},
			Restaurants: []places.PlaceRecord{
				place("pondicherry-french-bistro", "French‑Indian Bistro", places.CategoryRestaurant, 11.9330, 79.8330,
					"White Town, Pondicherry",
					"Cosy bistro serving a mix of South Indian flavours and French‑inspired dishes.",
					unsplashPhoto("1504674900247-0877df9cc836")),
			},
			Hotels: []places.PlaceRecord{
				place("pondicherry-heritage-guesthouse", "Heritage Guesthouse", places.CategoryHotel, 11.9310, 79.8320,
					"Heritage Quarter, Pondicherry",
					"Colourful colonial‑style stay with courtyards and quiet streets nearby.",
					unsplashPhoto("1505691723518-36a5ac3be353")),
			},
			Attractions: []places.PlaceRecord{},
		},
	}
}

func khajuraho() places.CityRecord {
	return places.CityRecord{
		Name:        "Khajuraho",
		State:       "Madhya Pradesh",
		Coordinates: places.Coordinate{Latitude: 24.8318, Longitude: 79.9199},
		Description: "Famous for its UNESCO‑listed temple complex with intricate sculptures and architecture.",
		Image:       unsplashPhoto("1521295121783-8a321d551ad2"),
		Places: places.CityPlaces{
			Monuments: []places.PlaceRecord{
				place("khajuraho-western-group", "Western Group of Temples", places.CategoryTemple, 24.8522, 79.9220,
					"Sevagram, Khajuraho, Madhya Pradesh",
					"The main temple complex housing exquisitely carved temples dedicated to various deities.",
					unsplashPhoto("1583745549635-1c00da239194")),
			},
			Restaurants: []places.PlaceRecord{
				place("khajuraho-local-thali", "Local Thali House", places.CategoryRestaurant, 24.8500, 79.9250,
					"Near Temple Road, Khajuraho",
					"Simple eatery serving hearty North Indian thalis to pilgrims and travellers.",
					unsplashPhoto("1604908176997-125188dcfdb7")),
			},
			Hotels: []places.PlaceRecord{
				place("khajuraho-temple-view-lodge", "Temple View Lodge", places.CategoryHotel, 24.8510, 79.9230,
					"Near Western Group of Temples, Khajuraho",
					"Comfortable lodge within walking distance of the main temple complex.",
					unsplashPhoto("1542314831-068cd1dbfeeb")),
			},
			Attractions: []places.PlaceRecord{},
		},
	}
}
