package mcpserver

// ChartGuide explains the chart fields returned by the tools so that LLM
// consumers read them consistently.
const ChartGuide = `# Daivaya Chart Guide

Charts are sidereal (Lahiri ayanamsa unless configured otherwise) and use
whole signs.

## Fields

- ` + "`d1_chart`" + `: the rasi chart. ` + "`lagna`" + ` is the rising sign, ` + "`planets`" + ` maps
  each body to its sign.
- ` + "`d9_chart`" + `: the navamsa chart, each 30 degree sign cut into nine parts of
  3 degrees 20 minutes.
- ` + "`astro_details.nakshatra`" + `: the Moon's lunar mansion (27 of 13 degrees 20
  minutes), its quarter (pada 1 to 4) and its ruler.
- ` + "`astro_details.dasha_info`" + `: the Vimshottari mahadasha running today, the next
  one and the year it starts, and the years left of the birth period.

## Bodies

Sun, Moon, Mars, Mercury, Jupiter, Venus, Saturn, Rahu, Ketu. Ketu is always
exactly opposite Rahu.

## Signs

Aries, Taurus, Gemini, Cancer, Leo, Virgo, Libra, Scorpio, Sagittarius,
Capricorn, Aquarius, Pisces.

## Vimshottari order (years)

Ketu 7, Venus 20, Sun 6, Moon 10, Mars 7, Rahu 18, Jupiter 16, Saturn 19,
Mercury 17. One cycle is 120 years; a year is 365.2425 days.

## Porondam

The compatibility checks are Nakath, Gana, Mahendra, Stree Deergha, Rashi,
Rajju and Nadi, counted from the bride's mansion to the groom's.
`
