package tools

const styleMatchupTemplate = `Analyze the fighting style matchup between these fighters:

Fighter 1: {{.fighter1_name}}
- Stance: {{.fighter1_stance}}
- Strike Rate: {{.fighter1_slpm}} strikes per minute
- Takedown Rate: {{.fighter1_td}} per 15 minutes

Fighter 2: {{.fighter2_name}}
- Stance: {{.fighter2_stance}}
- Strike Rate: {{.fighter2_slpm}} strikes per minute
- Takedown Rate: {{.fighter2_td}} per 15 minutes

Consider:
1. Stance matchup advantages
2. Distance management implications
3. Offensive vs defensive tendencies
4. Grappling vs striking preferences
`

const statisticalComparisonTemplate = `Compare the statistical advantages between:

{{.fighter1_name}}:
- Strike Accuracy: {{.fighter1_acc}}
- Strike Defense: {{.fighter1_def}}
- TD Accuracy: {{.fighter1_td_acc}}
- TD Defense: {{.fighter1_td_def}}

{{.fighter2_name}}:
- Strike Accuracy: {{.fighter2_acc}}
- Strike Defense: {{.fighter2_def}}
- TD Accuracy: {{.fighter2_td_acc}}
- TD Defense: {{.fighter2_td_def}}

Analyze:
1. Striking efficiency differences
2. Defensive capabilities
3. Grappling effectiveness
4. Overall statistical advantages
`

const formAnalysisTemplate = `Analyze recent fight history and form:

{{.fighter1_name}}:
Record: {{.fighter1_record}}
Recent Fights:
{{.fighter1_recent}}

{{.fighter2_name}}:
Record: {{.fighter2_record}}
Recent Fights:
{{.fighter2_recent}}

Consider:
1. Recent win/loss trends
2. Quality of opposition
3. Performance consistency
4. Current momentum
`

const momentumTemplate = `Analyze the career momentum for both fighters:

{{.fighter1_name}}:
Record: {{.fighter1_record}}
Recent Fights: {{.fighter1_recent}}

{{.fighter2_name}}:
Record: {{.fighter2_record}}
Recent Fights: {{.fighter2_recent}}

Consider:
1. Win/loss streaks
2. Quality of recent opposition
3. Performance improvements or declines
4. Recovery from losses
5. Activity level and layoffs

Determine which fighter has more positive momentum coming into this fight.
`

const matchupAdvantagesTemplate = `Analyze the specific matchup advantages between:

{{.fighter1_name}}:
- Stance: {{.fighter1_stance}}
- Striking: {{.fighter1_slpm}} strikes per minute
- Takedowns: {{.fighter1_td}} per 15 minutes
- Submissions: {{.fighter1_sub}} per 15 minutes

{{.fighter2_name}}:
- Stance: {{.fighter2_stance}}
- Striking: {{.fighter2_slpm}} strikes per minute
- Takedowns: {{.fighter2_td}} per 15 minutes
- Submissions: {{.fighter2_sub}} per 15 minutes

Identify:
1. Stance advantages (orthodox vs southpaw dynamics)
2. Offensive output differentials
3. Specific technical advantages
4. Phase control advantages (striking vs grappling)
5. Overall matchup dynamics

Determine which fighter has more advantageous matchup factors.
`

const statisticalEdgeTemplate = `Calculate the statistical edge between:

{{.fighter1_name}}:
- Striking Accuracy: {{.fighter1_acc}}
- Striking Defense: {{.fighter1_def}}
- Strikes Landed/Min: {{.fighter1_slpm}}
- Strikes Absorbed/Min: {{.fighter1_sapm}}
- TD Accuracy: {{.fighter1_td_acc}}
- TD Defense: {{.fighter1_td_def}}

{{.fighter2_name}}:
- Striking Accuracy: {{.fighter2_acc}}
- Striking Defense: {{.fighter2_def}}
- Strikes Landed/Min: {{.fighter2_slpm}}
- Strikes Absorbed/Min: {{.fighter2_sapm}}
- TD Accuracy: {{.fighter2_td_acc}}
- TD Defense: {{.fighter2_td_def}}

Calculate:
1. Net striking differential
2. Offensive efficiency difference
3. Defensive effectiveness difference
4. Grappling control advantage
5. Overall statistical edge percentage

Determine which fighter has the greater statistical advantage and by what margin.
`

const styleCounterTemplate = `Assess style counter dynamics between:

{{.fighter1_name}}:
- Stance: {{.fighter1_stance}}
- Record: {{.fighter1_record}}
- Striking Rate: {{.fighter1_slpm}} strikes per minute
- Takedown Rate: {{.fighter1_td}} per 15 minutes

{{.fighter2_name}}:
- Stance: {{.fighter2_stance}}
- Record: {{.fighter2_record}}
- Striking Rate: {{.fighter2_slpm}} strikes per minute
- Takedown Rate: {{.fighter2_td}} per 15 minutes

Analyze:
1. How fighter 1's style specifically counters fighter 2's approach
2. How fighter 2's style specifically counters fighter 1's approach
3. History against similar stylistic opponents
4. Adaptability factors for both fighters
5. Whose style presents more problems for their opponent

Determine whose fighting style creates more effective counters to their opponent's approach.
`
