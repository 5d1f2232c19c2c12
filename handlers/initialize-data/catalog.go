package main

import "dogotel/booking/model"

func sampleDining() []model.CatalogItem {
	return []model.CatalogItem{
		{
			Id:          "full-day-meals",
			Title:       "Full Day Meals",
			Description: "Complete meal package including breakfast, lunch, and dinner for your furry friend",
			Price:       25,
			Details:     "Premium quality meals tailored to your dog's dietary needs. Includes organic ingredients and fresh water.",
			Included:    []string{"Breakfast", "Lunch", "Dinner", "Fresh water", "Dietary accommodations"},
			Available:   true,
		},
		{
			Id:          "premium-treats",
			Title:       "Premium Treats Package",
			Description: "Special treats and snacks throughout the day",
			Price:       15,
			Details:     "Healthy and delicious treats made from natural ingredients.",
			Included:    []string{"Morning treats", "Afternoon snacks", "Evening rewards"},
			Available:   true,
		},
		{
			Id:          "special-diet",
			Title:       "Special Diet Meals",
			Description: "Customized meals for dogs with special dietary requirements",
			Price:       35,
			Details:     "Veterinarian-approved meals for dogs with allergies, sensitivities, or specific health needs.",
			Included:    []string{"Customized meals", "Nutritional consultation", "Dietary monitoring"},
			Available:   true,
		},
	}
}

func sampleServices() []model.CatalogItem {
	return []model.CatalogItem{
		{
			Id:          "grooming",
			Title:       "Grooming Service",
			Description: "Professional grooming to keep your dog fresh, clean, and fluffy",
			Price:       30,
			Details:     "Full grooming service including bath, brush, nail trim, and styling.",
			Included:    []string{"Shampoo & bath", "Brushing", "Nail trimming", "Ear cleaning", "Basic styling"},
			Duration:    "2 hours",
			Available:   true,
		},
		{
			Id:          "fitness-training",
			Title:       "Fitness Training",
			Description: "Exercise and training sessions to keep your dog active and healthy",
			Price:       20,
			Details:     "Personalized exercise routines and basic training sessions.",
			Included:    []string{"Exercise session", "Basic commands training", "Playtime", "Health monitoring"},
			Duration:    "1 hour",
			Available:   true,
		},
		{
			Id:          "veterinary-checkup",
			Title:       "Veterinary Checkup",
			Description: "Basic health checkup by our licensed veterinarian",
			Price:       50,
			Details:     "Comprehensive health examination to ensure your dog's wellbeing.",
			Included:    []string{"Physical examination", "Health assessment", "Basic vaccinations", "Health report"},
			Duration:    "30 minutes",
			Available:   true,
		},
		{
			Id:          "playtime-session",
			Title:       "Extended Playtime",
			Description: "Extra playtime and socialization with other dogs",
			Price:       15,
			Details:     "Supervised play sessions in our secure play areas.",
			Included:    []string{"Group play", "Toy activities", "Socialization", "Supervised fun"},
			Duration:    "1 hour",
			Available:   true,
		},
		{
			Id:          "dog-walking",
			Title:       "Dog Walking Service",
			Description: "Individual or group walks around our beautiful grounds",
			Price:       12,
			Details:     "Regular walks to ensure your dog gets adequate exercise and fresh air.",
			Included:    []string{"Individual walk", "Fresh air", "Exercise", "Photo updates"},
			Duration:    "30 minutes",
			Available:   true,
		},
	}
}
