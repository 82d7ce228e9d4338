package export

import (
	"fmt"
	"strconv"

	"github.com/Dan9191/balance-service/internal/models"
	"github.com/beevik/etree"
)

// TimelineXML renders a balance timeline as an XML document:
//
//	<BalanceTimeline customerId="1" displayName="Acme">
//	  <Points>
//	    <Point date="2023-01-01" endOfDayBalance="1000" dailyChange="1000"/>
//	  </Points>
//	  <MaxDebt date="2023-01-01" balance="1000"/>
//	</BalanceTimeline>
func TimelineXML(tl *models.BalanceTimeline) ([]byte, error) {
	if tl == nil {
		return nil, fmt.Errorf("timeline is nil")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("BalanceTimeline")
	root.CreateAttr("customerId", strconv.FormatInt(tl.CustomerID, 10))
	if tl.DisplayName != nil {
		root.CreateAttr("displayName", *tl.DisplayName)
	}

	points := root.CreateElement("Points")
	for _, p := range tl.Points {
		el := points.CreateElement("Point")
		el.CreateAttr("date", p.Date)
		el.CreateAttr("endOfDayBalance", p.EndOfDayBalance.String())
		el.CreateAttr("dailyChange", p.DailyChange.String())
	}

	if tl.MaxDebt != nil {
		el := root.CreateElement("MaxDebt")
		el.CreateAttr("date", tl.MaxDebt.Date)
		el.CreateAttr("balance", tl.MaxDebt.Balance.String())
	}

	doc.Indent(2)
	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render timeline XML: %w", err)
	}
	return out, nil
}
