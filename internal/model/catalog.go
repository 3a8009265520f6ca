package model

// Services lists the bookable services in display order.
var Services = []Service{
	{Code: "coiffure-dame", Label: "Coiffure Dame"},
	{Code: "pose-perruque", Label: "Pose de perruque"},
	{Code: "onglerie", Label: "Onglerie"},
	{Code: "massage", Label: "Massage"},
	{Code: "nouage-foulard", Label: "Nouage de foulard"},
	{Code: "formation", Label: "Formation"},
	{Code: "coupe-homme", Label: "Coupe Homme"},
	{Code: "taille-barbe", Label: "Taille / Entretien barbe"},
	{Code: "coupe-enfant", Label: "Coupe Enfant"},
}

func ServiceByCode(code string) (Service, bool) {
	for _, s := range Services {
		if s.Code == code {
			return s, true
		}
	}
	return Service{}, false
}

// Rewards is the static loyalty catalog. Unlocking is display-only; points
// are never spent.
var Rewards = []Reward{
	{ID: "discount-10", Name: "Réduction 10%", Description: "10% de réduction sur votre prochain service", Points: 50},
	{ID: "priority-booking", Name: "Réservation prioritaire", Description: "Accès prioritaire aux créneaux", Points: 100},
	{ID: "loyalty-bonus", Name: "Bonus fidélité", Description: "Double points sur votre prochaine visite", Points: 150},
	{ID: "free-service", Name: "Service gratuit", Description: "Un service gratuit de votre choix", Points: 200},
}
