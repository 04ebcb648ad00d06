package generator

import (
	"fmt"

	"github.com/ishahzaibhaider/wasatah-poc-sub000/internal/domain"
)

type attributePools struct {
	emails []string
	phones []string
}

type city struct {
	name      string
	districts []string
}

var cities = []city{
	{name: "Riyadh", districts: []string{"Al Malqa", "Al Olaya", "Hittin", "Al Narjis", "Al Yasmin"}},
	{name: "Jeddah", districts: []string{"Al Shati", "Al Rawdah", "Obhur", "Al Zahra"}},
	{name: "Dammam", districts: []string{"Al Faisaliyah", "Al Shatea", "Al Mazruiyah"}},
	{name: "Khobar", districts: []string{"Al Ulaya", "Al Aqrabiyah", "Al Rakah"}},
	{name: "Madinah", districts: []string{"Quba", "Al Aziziyah", "Al Khalidiyah"}},
}

var propertyTypes = []string{"villa", "apartment", "townhouse", "duplex", "land"}

func (g *Generator) maybeSharedString(pool *[]string, chance float64, newValue func() string) string {
	if len(*pool) > 0 && g.rand.Float64() < chance {
		return (*pool)[g.rand.Intn(len(*pool))]
	}
	val := newValue()
	*pool = append(*pool, val)
	return val
}

func (g *Generator) randomFullName() string {
	return fmt.Sprintf("%s %s", g.names.first[g.rand.Intn(len(g.names.first))],
		g.names.last[g.rand.Intn(len(g.names.last))])
}

func (g *Generator) randomEmail(i int) string {
	host := g.names.domains[g.rand.Intn(len(g.names.domains))]
	return fmt.Sprintf("user%05d@%s", i+1, host)
}

// randomPhone returns a Saudi mobile number in normalised form.
func (g *Generator) randomPhone() string {
	return fmt.Sprintf("+9665%08d", g.rand.Intn(100000000))
}

func (g *Generator) randomRole() domain.Role {
	n := g.rand.Intn(10)
	switch {
	case n < 5:
		return domain.RoleBuyer
	case n < 9:
		return domain.RoleSeller
	default:
		return domain.RoleBroker
	}
}

type nameFragments struct {
	first   []string
	last    []string
	domains []string
}

func defaultNameFragments() nameFragments {
	return nameFragments{
		first:   []string{"Sarah", "Ahmed", "Fatimah", "Mohammed", "Noura", "Khalid", "Reem", "Abdullah", "Lama", "Faisal", "Huda", "Omar", "Maha", "Saad", "Aisha"},
		last:    []string{"Al-Qahtani", "Al-Rashid", "Al-Zahrani", "Al-Otaibi", "Al-Harbi", "Al-Ghamdi", "Al-Shehri", "Al-Dosari", "Al-Mutairi", "Al-Subaie"},
		domains: []string{"example.sa", "mail.example.com", "wasatah.test"},
	}
}
