package repository

import (
	"time"

	"github.com/noah-isme/acs-institute-api/internal/models"
)

var sampleEpoch = time.Date(2026, time.January, 5, 9, 0, 0, 0, time.UTC)

// SampleCourses returns the built-in catalog served when no backend is
// configured. Each call returns fresh copies.
func SampleCourses() []models.Course {
	return []models.Course{
		{
			ID:          "1",
			Name:        "Full Stack Web Development",
			Description: "Build production web applications end to end with React, Node.js and PostgreSQL.",
			Duration:    16,
			Price:       20000,
			Image:       "https://images.pexels.com/photos/11035380/pexels-photo-11035380.jpeg",
			Features:    []string{"HTML, CSS & JavaScript", "React & TypeScript", "Node.js & Express", "PostgreSQL", "Capstone project"},
			Level:       models.CourseLevelBeginner,
			Instructor:  "Arun Kumar",
			Category:    "Web Development",
			StartDate:   time.Date(2026, time.November, 2, 0, 0, 0, 0, time.UTC),
			MaxStudents: 30,
			CreatedAt:   sampleEpoch,
		},
		{
			ID:          "2",
			Name:        "Python & Data Science",
			Description: "Python programming, data analysis and machine learning foundations.",
			Duration:    12,
			Price:       25000,
			Image:       "https://images.pexels.com/photos/1181671/pexels-photo-1181671.jpeg",
			Features:    []string{"Python fundamentals", "NumPy & Pandas", "Data visualisation", "scikit-learn", "Kaggle-style projects"},
			Level:       models.CourseLevelIntermediate,
			Instructor:  "Priya Sharma",
			Category:    "Data Science",
			StartDate:   time.Date(2026, time.November, 16, 0, 0, 0, 0, time.UTC),
			MaxStudents: 25,
			CreatedAt:   sampleEpoch.Add(time.Minute),
		},
		{
			ID:          "3",
			Name:        "Java Enterprise Development",
			Description: "Core Java, Spring Boot and microservices for enterprise back ends.",
			Duration:    14,
			Price:       22000,
			Image:       "https://images.pexels.com/photos/574071/pexels-photo-574071.jpeg",
			Features:    []string{"Core Java & OOP", "Spring Boot", "JPA & Hibernate", "REST APIs", "Microservices"},
			Level:       models.CourseLevelIntermediate,
			Instructor:  "Rahul Verma",
			Category:    "Backend Development",
			StartDate:   time.Date(2026, time.December, 1, 0, 0, 0, 0, time.UTC),
			MaxStudents: 25,
			CreatedAt:   sampleEpoch.Add(2 * time.Minute),
		},
		{
			ID:          "4",
			Name:        "Cloud & DevOps Engineering",
			Description: "Ship and operate software with Docker, Kubernetes, CI/CD and AWS.",
			Duration:    10,
			Price:       30000,
			Image:       "https://images.pexels.com/photos/1148820/pexels-photo-1148820.jpeg",
			Features:    []string{"Linux & networking", "Docker", "Kubernetes", "CI/CD pipelines", "AWS fundamentals"},
			Level:       models.CourseLevelAdvanced,
			Instructor:  "Sneha Reddy",
			Category:    "DevOps",
			StartDate:   time.Date(2026, time.December, 7, 0, 0, 0, 0, time.UTC),
			MaxStudents: 20,
			CreatedAt:   sampleEpoch.Add(3 * time.Minute),
		},
	}
}

// SampleSalonServices returns the tanning-salon catalog for the booking variant.
func SampleSalonServices() []models.SalonService {
	return []models.SalonService{
		{ID: "1", Name: "Classic Spray Tan", Description: "Full-body spray tan with a natural, streak-free finish.", Duration: 30, Price: 2500, Image: "https://images.pexels.com/photos/3997989/pexels-photo-3997989.jpeg", CreatedAt: sampleEpoch},
		{ID: "2", Name: "Airbrush Tan", Description: "Custom airbrushed tan tailored to your skin tone.", Duration: 45, Price: 3500, Image: "https://images.pexels.com/photos/3985329/pexels-photo-3985329.jpeg", CreatedAt: sampleEpoch.Add(time.Minute)},
		{ID: "3", Name: "Express Tan", Description: "Rapid-development tan, shower after two hours.", Duration: 20, Price: 1800, Image: "https://images.pexels.com/photos/3764013/pexels-photo-3764013.jpeg", CreatedAt: sampleEpoch.Add(2 * time.Minute)},
		{ID: "4", Name: "Luxury Tan Package", Description: "Exfoliation, airbrush tan and hydrating finish.", Duration: 90, Price: 6000, Image: "https://images.pexels.com/photos/3757942/pexels-photo-3757942.jpeg", CreatedAt: sampleEpoch.Add(3 * time.Minute)},
	}
}
