package worker

import (
	"fmt"

	"github.com/ohmynofan/drops-autoclaimer/internal/adapters/browser"
	"github.com/ohmynofan/drops-autoclaimer/pkg/utils"
)

var amazonSignInProbe = browser.Probe{
	Body: `const button = document.querySelector('[data-a-target="sign-in-button"]');
  if (button) { button.click(); return true; }
  return null;`,
}

// Removes the consent banner that covers the Twitch login form.
const twitchConsentScript = `(() => {
  const observer = new MutationObserver(() => {
    const privacy = document.querySelector('div.kclbMN.consent-banner');
    if (privacy) privacy.remove();
  });
  observer.observe(document.documentElement, { childList: true, subtree: true });
  return true;
})()`

const nintendoCenterScript = `(() => {
  const html = document.documentElement;
  html.style.display = 'flex';
  html.style.justifyContent = 'center';
  return true;
})()`

var amazonCatalogProbe = browser.Probe{
	Body: `const blocks = document.querySelectorAll('.tw-block');
  if (blocks.length === 0) return null;
  const out = [];
  blocks.forEach((block) => {
    if (!block.querySelector('p[title="Claim"]')) return;
    const entity = block.querySelector('p a[aria-label]')?.getAttribute('aria-label')?.trim();
    const item = block.querySelector('.item-card-details__body__primary h3')?.textContent.trim();
    const link = block.querySelector('a[data-a-target="learn-more-card"]')?.href;
    if (entity && item && link) out.push({ entity, item, link });
  });
  return out;`,
}

// The claim probe keeps pressing the buy-box button until the page moves,
// a linking prompt blocks it, or the limit passes.
var amazonClaimProbe = browser.Probe{
	Setup: `const start = location.href;
  let linked = false;`,
	Body: `if (location.href !== start) return 'claimed';
  if (!linked) {
    const claim = document.querySelector('button[data-a-target="buy-box_call-to-action"]');
    if (claim) claim.click();
  }
  if (document.querySelector('[data-a-target="LinkAccountModal"]')) {
    const link = document.querySelector('button[data-a-target="LinkAccountButton"]');
    const already = document.querySelector('button[data-a-target="AlreadyLinkedAccountButton"]');
    if (link && already) {
      if (!linked) { linked = true; already.click(); }
    } else if (link) {
      return 'linking-required';
    }
  }
  return null;`,
}

var twitchCampaignsProbe = browser.Probe{
	Body: `const dropDivs = document.querySelectorAll('.Layout-sc-1xcs6mc-0.ivrFkx + .Layout-sc-1xcs6mc-0');
  const container = Array.from(dropDivs).find((div) => div.getAttribute('class') === 'Layout-sc-1xcs6mc-0');
  if (!container) return null;
  const gameDivs = container.querySelectorAll(':scope > .Layout-sc-1xcs6mc-0');
  if (gameDivs.length === 0) return null;
  const games = [];
  gameDivs.forEach((gameDiv) => {
    const game = gameDiv.querySelector('h3')?.textContent || '';
    const rewardsDiv = gameDiv.querySelector('.cRPebU > .Layout-sc-1xcs6mc-0')
      || gameDiv.querySelector('.dyXzMr > .Layout-sc-1xcs6mc-0');
    const rewards = [];
    if (rewardsDiv) {
      rewardsDiv.querySelectorAll(':scope > .Layout-sc-1xcs6mc-0:not(.hmbWfq)').forEach((child) => {
        const name = child.querySelector('p.CoreText-sc-1txzju1-0')?.textContent || '';
        const items = [];
        const sources = [];
        const typeset = child.querySelector('.tw-typeset');
        if (typeset) {
          typeset.querySelectorAll('li').forEach((li) => {
            const span = li.querySelector('span');
            if (span) items.push(span.textContent.trim());
            li.querySelectorAll('a').forEach((a) => {
              const text = a.textContent.trim().toLowerCase();
              const resolve = text === 'more' || text === 'a participating live channel';
              sources.push({ url: a.href, resolve });
            });
          });
        }
        rewards.push({ name, items, sources });
      });
    }
    games.push({ game, rewards, connected: !!gameDiv.querySelector('span.tw-pill') });
  });
  return games;`,
}

var resolveSourceProbe = browser.Probe{
	Body: `const join = document.querySelector('a.ScCoreButton-sc-ocjdkq-0.ScCoreButtonPrimary-sc-ocjdkq-1');
  if (join) return { status: 'live', target: join.href };
  const none = [...document.querySelectorAll('h3.tw-title')].find((h3) => h3.textContent.trim() === 'No results found');
  if (none) return { status: 'continue' };
  return null;`,
}

var directSourceProbe = browser.Probe{
	Body: `if (document.querySelector('div.home-offline-hero')) return { status: 'continue' };
  if (document.querySelector('span.live-time')) return { status: 'live' };
  return null;`,
}

// progressProbe reads the inventory block of one reward after the page
// settles. Items whose claim button is showing are clicked as they are read.
func progressProbe(reward string) browser.Probe {
	return browser.Probe{
		Body: fmt.Sprintf(`const name = %s;
  const blocks = [];
  document.querySelectorAll('.Layout-sc-1xcs6mc-0.ilRKfU').forEach((block) => {
    const match = Array.from(block.querySelectorAll('a.tw-link')).some((a) => a.textContent.trim() === name);
    if (!match) return;
    const items = [];
    block.querySelectorAll('.Layout-sc-1xcs6mc-0.kBihNt').forEach((item) => {
      const bar = item.querySelector('.Layout-sc-1xcs6mc-0.iHJIAl');
      const progress = bar ? (bar.querySelector('.CoreText-sc-1txzju1-0')?.textContent || '').trim() : null;
      const label = item.querySelector('p.CoreText-sc-1txzju1-0.jfZuWl')?.textContent || '';
      const claim = item.querySelector('button div[data-a-target="tw-core-button-label-text"]');
      if (claim) claim.click();
      items.push({ name: label, progress, claimed: !!claim });
    });
    blocks.push({ items });
  });
  return { blocks };`, utils.JSString(reward)),
	}
}

func rewardListedScript(reward string) string {
	return fmt.Sprintf(`(() => {
  const name = %s;
  const listed = Array.from(document.querySelectorAll('a.tw-link')).some((a) => a.textContent.trim() === name);
  return { listed };
})()`, utils.JSString(reward))
}

const watchOfflineScript = `(() => ({ offline: !!document.querySelector('.follow-panel-overlay') }))()`

const nintendoSignInScript = `(() => {
  const signIn = document.querySelector('button.signInButton');
  if (signIn) signIn.click();
  const mii = document.querySelector('a.mii');
  if (mii) mii.click();
  return { signIn: !!signIn, mii: !!mii };
})()`

var nintendoBonusProbe = browser.Probe{
	Body: `const overlay = document.querySelector('ul.GiftItem_points');
  if (!overlay) return null;
  const total = document.querySelector('.PointDetailCategory_item-platinum .value')?.textContent || '';
  const claimed = document.querySelector('ul.GiftItem_points span.value')?.textContent || '0';
  return { total, claimed };`,
}

const nintendoTotalScript = `(() => ({
  total: document.querySelector('.PointDetailCategory_item-platinum .value')?.textContent || '',
  claimed: '0'
}))()`

const nintendoMissionsClickScript = `(() => {
  const active = document.querySelector('.btn-primary.MissionBulkReceive_button');
  if (active) active.click();
  return { clicked: !!active, inactive: !!document.querySelector('.btn-disabled.MissionBulkReceive_button') };
})()`

const nintendoMissionsPointsScript = `(() => {
  let claimed = '0';
  const total = document.querySelector('.CurrentPoints_item-platinum .value')?.textContent || '';
  const list = document.querySelector('ul.MissionBulkModal_pointList');
  const modal = list ? list.closest('div.Modal') : null;
  if (modal && window.getComputedStyle(modal).display !== 'none') {
    claimed = list.querySelector('.point .value')?.textContent || '0';
  }
  return { total, claimed };
})()`
